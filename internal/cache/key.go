package cache

import (
	"encoding/json"
	"net/url"
	"slices"
	"strconv"
	"unicode/utf16"

	"github.com/tomaslau/focusonly/internal/model"
)

// KeyPrefix namespaces verdict entries in the shared store
const KeyPrefix = "focusonly_cache_"

// Key derives the cache key for a (URL, profile) pair.
// Profiles that differ only in list order or duplicates share a key.
func Key(rawURL string, profile model.Profile) string {
	return KeyPrefix + hashString(normalizeURL(rawURL)) + "_" + hashString(canonicalProfile(profile))
}

// hashString is the 32-bit h*31+c string hash over UTF-16 code units, in base 36.
// Not collision resistant; this is a cache key, not a security boundary.
func hashString(s string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	return strconv.FormatInt(int64(h), 36)
}

// normalizeURL drops the fragment, which never changes page content
func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// canonicalProfile serializes a profile with sorted, de-duplicated lists
func canonicalProfile(p model.Profile) string {
	canon := struct {
		Role  string   `json:"role"`
		Goals []string `json:"goals"`
		Avoid []string `json:"avoid"`
		Focus []string `json:"focus"`
	}{
		Role:  p.Role,
		Goals: sortedSet(p.Goals),
		Avoid: sortedSet(p.Avoid),
		Focus: sortedSet(p.Focus),
	}
	data, _ := json.Marshal(canon) // Strings and slices cannot fail to marshal
	return string(data)
}

func sortedSet(items []string) []string {
	out := append([]string{}, items...)
	slices.Sort(out)
	return slices.Compact(out)
}
