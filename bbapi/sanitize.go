package bbapi

import "regexp"

var (
	markupTag = regexp.MustCompile(`<[^>]*>`)
	breakTag  = regexp.MustCompile(`(?i)^<br\s*/?>$`)
)

// SanitizeHTML removes every markup tag except <br> and <br/> (any case).
// Text between tags and the kept break tags are left byte-for-byte intact.
func SanitizeHTML(html string) string {
	if html == "" {
		return ""
	}
	return markupTag.ReplaceAllStringFunc(html, func(tag string) string {
		if breakTag.MatchString(tag) {
			return tag
		}
		return ""
	})
}
