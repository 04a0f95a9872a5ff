package transfer

import "strings"

// MatchesDomain reports whether rawURL points at domain or one of its
// subdomains. The check is scheme- and case-insensitive, ignores
// userinfo, port, path, query and fragment, and treats a leading "www."
// as no subdomain. Substring overlap is not a match: "notforum-info.ru"
// does not match "forum-info.ru". Empty or malformed URLs never match.
func MatchesDomain(rawURL string, domain string) bool {
	host := hostOf(rawURL)
	if host == "" || domain == "" {
		return false
	}

	domain = strings.TrimPrefix(strings.ToLower(domain), "www.")
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// hostOf extracts the bare lowercase host from a URL-ish cell value.
// Scheme-less values ("forum-info.ru/page") are tolerated because sheet
// cells are hand-filled.
func hostOf(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ""
	}

	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}

	// authority ends at the first path, query or fragment delimiter
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}

	// userinfo before port, "user:pass@host:8080" must keep the host
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[:i]
	}

	s = strings.ToLower(s)
	return strings.TrimPrefix(s, "www.")
}
