package bbapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractionError means the site or bundle layout no longer matches what the
// extractor looks for. Nothing downstream can be trusted after one.
type ExtractionError struct {
	Array  string
	Reason string
}

func (e *ExtractionError) Error() string {
	if e.Array == "" {
		return "bundle extraction: " + e.Reason
	}
	return fmt.Sprintf("bundle extraction: %s array: %s", e.Array, e.Reason)
}

var versionPattern = regexp.MustCompile(`index\.bundle\.js\?v=([0-9.]+)`)

// An array is located by its first known elements and runs to the next ']'.
type referenceArray struct {
	name   string
	anchor *regexp.Regexp
}

var referenceArrays = []referenceArray{
	{"categories", regexp.MustCompile(`"Action","Item"[^\]]*`)},
	{"types", regexp.MustCompile(`"Melee","Magic"[^\]]*`)},
	{"rarities", regexp.MustCompile(`"Common","Uncommon"[^\]]*`)},
	{"colors", regexp.MustCompile(`"Green","Blue","Red","Purple"[^\]]*`)},
	{"expansions", regexp.MustCompile(`"Core","Metaprogress"[^\]]*`)},
}

// BundleExtractor reads the reference arrays out of the site's compiled
// client script. It depends on literal anchors inside minified JavaScript
// and breaks whenever upstream reorders or renames those values.
type BundleExtractor struct {
	fetcher *Fetcher
	logger  *slog.Logger
}

func NewBundleExtractor(fetcher *Fetcher, logger *slog.Logger) *BundleExtractor {
	return &BundleExtractor{fetcher: fetcher, logger: loggerOrDefault(logger)}
}

// FetchReferenceData fetches the current bundle and extracts all five arrays.
func (b *BundleExtractor) FetchReferenceData(ctx context.Context) (ReferenceData, error) {
	version, err := b.FetchBundleVersion(ctx)
	if err != nil {
		return ReferenceData{}, err
	}

	bundleURL := BundleURL(version)
	b.logger.Info("fetching bundle", "url", bundleURL)
	bundle, err := b.fetcher.Fetch(ctx, bundleURL)
	if err != nil {
		return ReferenceData{}, fmt.Errorf("Error fetching bundle %s: %w", version, err)
	}

	b.logger.Info("extracting reference arrays from bundle", "bytes", len(bundle))
	return ExtractReferenceData(bundle)
}

// FetchBundleVersion reads the bundle version token from the site root.
func (b *BundleExtractor) FetchBundleVersion(ctx context.Context) (string, error) {
	b.logger.Info("fetching bundle version")
	page, err := b.fetcher.Fetch(ctx, "/")
	if err != nil {
		return "", fmt.Errorf("Error fetching site root: %w", err)
	}

	version, err := FindBundleVersion(page)
	if err != nil {
		return "", err
	}
	b.logger.Info("found bundle version", "version", version)
	return version, nil
}

// FindBundleVersion looks for the version token in the script tags of page,
// then anywhere in the raw text.
func FindBundleVersion(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err == nil {
		var version string
		doc.Find("script[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if m := versionPattern.FindStringSubmatch(s.AttrOr("src", "")); m != nil {
				version = m[1]
				return false
			}
			return true
		})
		if version != "" {
			return version, nil
		}
	}

	if m := versionPattern.FindStringSubmatch(page); m != nil {
		return m[1], nil
	}
	return "", &ExtractionError{Reason: "bundle version token not found in site root"}
}

// ExtractReferenceData pulls every reference array out of the bundle text.
func ExtractReferenceData(bundle string) (ReferenceData, error) {
	arrays := make(map[string][]string, len(referenceArrays))
	for _, ra := range referenceArrays {
		values, err := extractArray(bundle, ra)
		if err != nil {
			return ReferenceData{}, err
		}
		arrays[ra.name] = values
	}

	return ReferenceData{
		Categories: arrays["categories"],
		Types:      arrays["types"],
		Rarities:   arrays["rarities"],
		Colors:     arrays["colors"],
		Expansions: arrays["expansions"],
	}, nil
}

func extractArray(bundle string, ra referenceArray) ([]string, error) {
	match := ra.anchor.FindString(bundle)
	if match == "" {
		return nil, &ExtractionError{Array: ra.name, Reason: "anchor not found"}
	}

	var values []string
	if err := json.Unmarshal([]byte("["+match+"]"), &values); err != nil {
		return nil, &ExtractionError{Array: ra.name, Reason: fmt.Sprintf("not a JSON string array: %v", err)}
	}
	return values, nil
}
