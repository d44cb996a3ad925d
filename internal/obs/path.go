package obs

import "strings"

// CanonicalPath collapses path parameters so metric labels stay bounded.
// Claim identifiers are the only embedded parameter in this API.
func CanonicalPath(path string) string {
	if path == "" {
		return "/"
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	const claimsPrefix = "/api/v1/claims/"
	if rest, ok := strings.CutPrefix(path, claimsPrefix); ok && rest != "" {
		switch parts := strings.Split(rest, "/"); len(parts) {
		case 1:
			return claimsPrefix + ":id"
		case 2:
			return claimsPrefix + ":id/" + parts[1]
		}
	}
	return path
}
