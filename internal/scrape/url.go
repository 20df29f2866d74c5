package scrape

import "strings"

// AbsoluteURL resolves a relative href against a site base. Hrefs that are
// already absolute pass through untouched.
func AbsoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "/")
}
