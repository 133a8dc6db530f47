package crawler

import (
	"net"
	"net/url"
	"sort"
	"strings"
)

// Normalize returns the canonical comparison key for a URL.
//
// Two URLs that refer to the same logical page must produce the same key,
// so the function:
//   - lower-cases the scheme and host
//   - drops default ports (http:80, https:443), keeps non-default ports
//   - sorts query parameters by key and by value for stable ordering
//   - removes the fragment
//
// Path handling depends on mode: NormalizationExact keeps the path untouched,
// NormalizationFold lowercases it and strips the trailing slash.
//
// Normalize never fails: input that cannot be parsed as a URL is returned
// unchanged as a degenerate key. Keys are only ever compared against each
// other, so a malformed input simply deduplicates against identical inputs.
func Normalize(raw string, mode NormalizationMode) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)

	// lowercase host and drop default ports
	host := strings.ToLower(u.Host)
	port := ""
	if ph, pp, err := net.SplitHostPort(host); err == nil {
		host, port = ph, pp
	} // else: host without explicit port, or IPv6 without port
	if port != "" {
		if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
			u.Host = host
		} else {
			u.Host = net.JoinHostPort(host, port)
		}
	} else {
		u.Host = host
	}

	if mode == NormalizationFold {
		u.Path = strings.ToLower(u.Path)
		if u.Path != "/" && strings.HasSuffix(u.Path, "/") {
			u.Path = strings.TrimRight(u.Path, "/")
		}
	}

	// sort query params (keys and values)
	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			sort.Strings(q[k])
		}
		// url.Values.Encode() sorts keys lexicographically
		u.RawQuery = q.Encode()
	}

	u.Fragment = ""

	return u.String()
}

// dedupe returns urls with duplicates removed, where two URLs are duplicates
// when they normalize to the same key under mode. Order of first occurrence
// is preserved.
func dedupe(urls []string, mode NormalizationMode) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, raw := range urls {
		key := Normalize(raw, mode)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, raw)
	}

	return out
}
