package resolver

import "strings"

// CleanURL reduces a relay endpoint to a bare hostname: the ws:// or wss://
// scheme is dropped case-insensitively, then everything from the first "/"
// (path), then everything from the first ":" (port). The result may be empty;
// callers must treat an empty hostname as unresolvable.
func CleanURL(raw string) string {
	host := raw

	lower := strings.ToLower(host)
	if strings.HasPrefix(lower, "wss://") {
		host = host[len("wss://"):]
	} else if strings.HasPrefix(lower, "ws://") {
		host = host[len("ws://"):]
	}

	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}

	return host
}
