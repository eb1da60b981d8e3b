package soundcloud

import (
	"net/url"
	"strings"
)

func IsLink(text string) bool {
	u, err := url.Parse(text)
	if nil != err {
		return false
	}

	switch u.Scheme {
	case "https", "http":
	default:
		return false
	}

	switch pathParts := strings.Split(strings.Trim(u.Path, "/"), "/"); u.Host {
	case "soundcloud.com", "www.soundcloud.com", "m.soundcloud.com":
		if len(pathParts) < 2 || pathParts[0] == "" || pathParts[1] == "" {
			return false
		}
		switch pathParts[0] {
		case "discover", "search", "stream", "upload", "you", "charts", "pages", "settings":
			return false
		}
		switch pathParts[1] {
		case "sets", "likes", "reposts", "followers", "following", "tracks", "albums", "popular-tracks":
			return false
		}
		return true
	case "on.soundcloud.com":
		return len(pathParts) == 1 && pathParts[0] != ""
	default:
		return false
	}
}
