package bbapi

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DEFAULT_BASE_URL = "https://blightbane.io"
	BUNDLE_PATH      = "/js/index.bundle.js"
	SEARCH_PATH      = "/api/cards"
	DETAIL_PATH      = "/api/card/"
	DEFAULT_TIMEOUT  = 60 * time.Second
	TALENT_CATEGORY  = 10
	MAX_TALENT_TIER  = 6
)

// Initialize a resty client with the site's base URL, a request timeout and
// browser-like request headers. An empty baseURL means DEFAULT_BASE_URL.
func NewRestyClient(baseURL string, timeout time.Duration, logger *slog.Logger) *resty.Client {
	if baseURL == "" {
		baseURL = DEFAULT_BASE_URL
	}
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetLogger(restyLogger{logger: loggerOrDefault(logger)})
	InitRequestHeader(client, baseURL)
	return client
}

// Initialize request headers the way a browser visiting the site sends them.
// Accept-Encoding is left to the transport so responses are decompressed.
func InitRequestHeader(client *resty.Client, baseURL string) {
	client.SetHeaders(map[string]string{
		"Accept":          "application/json, text/plain, text/html, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Connection":      "keep-alive",
		"Referer":         strings.TrimRight(baseURL, "/") + "/",
		"Sec-Fetch-Dest":  "empty",
		"Sec-Fetch-Mode":  "cors",
		"Sec-Fetch-Site":  "same-origin",
		"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64; rv:147.0) Gecko/20100101 Firefox/147.0",
	})
}

// Return a SearchParams for one talent query: tier travels in the rarity
// filter and the category filter selects talents.
func NewTalentSearchParams(tier int, expansion int) SearchParams {
	return SearchParams{
		Rarity:    strconv.Itoa(tier),
		Category:  strconv.Itoa(TALENT_CATEGORY),
		Expansion: strconv.Itoa(expansion),
	}
}

// Return a SearchParams for one card query filtered by rarity and color.
func NewCardSearchParams(rarity int, color int) SearchParams {
	return SearchParams{
		Rarity: strconv.Itoa(rarity),
		Banner: strconv.Itoa(color),
	}
}

// Encode the parameters as the search endpoint's query string. Every filter
// is always sent, empty ones as "".
func (sp SearchParams) Query() url.Values {
	q := url.Values{}
	q.Set("search", sp.Search)
	q.Set("rarity", sp.Rarity)
	q.Set("category", sp.Category)
	q.Set("type", sp.Type)
	q.Set("banner", sp.Banner)
	q.Set("exp", sp.Expansion)
	return q
}

func SearchURL(sp SearchParams) string {
	return SEARCH_PATH + "?" + sp.Query().Encode()
}

func CardURL(id int) string {
	return fmt.Sprintf("%s%d", DETAIL_PATH, id)
}

func TalentURL(id int) string {
	return fmt.Sprintf("%s%d?talent=true", DETAIL_PATH, id)
}

func BundleURL(version string) string {
	return BUNDLE_PATH + "?v=" + url.QueryEscape(version)
}

/*-------------------------------------------------------------------------------------------------*/

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// restyLogger forwards resty's own diagnostics to slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}
