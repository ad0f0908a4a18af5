package tabs

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"

	"github.com/tomaslau/focusonly/internal/model"
)

// skipReason reports why rawURL must not be analyzed, or "" when it may be
func skipReason(rawURL string, skipDomains []string) string {
	for _, prefix := range model.SkipURLPrefixes {
		if strings.HasPrefix(rawURL, prefix) {
			return fmt.Sprintf("Internal page (%s)", prefix)
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Hostname() == "" {
		return msgInvalidURL
	}
	host := normalizeHost(parsed.Hostname())

	for _, entry := range skipDomains {
		skip := normalizeHost(entry)
		if skip == "" {
			continue
		}
		if host == skip || strings.HasSuffix(host, "."+skip) {
			return "Skipped domain: " + entry
		}
	}
	return ""
}

// normalizeHost lowercases a hostname in its IDNA ASCII form so that
// Unicode and punycode spellings of the same domain compare equal
func normalizeHost(host string) string {
	host = strings.TrimSuffix(strings.TrimSpace(host), ".")
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return strings.ToLower(ascii)
	}
	return strings.ToLower(host)
}
