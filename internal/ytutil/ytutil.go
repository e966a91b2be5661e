package ytutil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	ChannelBaseURL = "https://www.youtube.com/channel/"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// pathPrefixes are the path shapes that carry the video ID as their next
// segment, e.g. https://www.youtube.com/embed/<id>.
var pathPrefixes = []string{"/v/", "/embed/", "/shorts/", "/live/"}

// ExtractVideoID finds the video ID in a watch URL (?v=), a youtu.be short
// link, an /embed/, /v/, /shorts/ or /live/ path, or a bare 11 character ID.
func ExtractVideoID(urlOrID string) (string, error) {
	urlOrID = strings.TrimSpace(urlOrID)
	if urlOrID == "" {
		return "", fmt.Errorf("ytutil.ExtractVideoID: empty input")
	}

	if videoIDPattern.MatchString(urlOrID) {
		return urlOrID, nil
	}

	parsed, err := url.Parse(urlOrID)
	if err != nil {
		return "", fmt.Errorf("ytutil.ExtractVideoID: %w", err)
	}

	if parsed.Host == "" && parsed.Scheme == "" && !strings.HasPrefix(urlOrID, "/") {
		// "youtu.be/<id>" without a scheme parses as a bare path
		if reparsed, err := url.Parse("https://" + urlOrID); err == nil {
			parsed = reparsed
		}
	}

	if id := parsed.Query().Get("v"); id != "" {
		return cleanID(id)
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	if host == "youtu.be" {
		if id := firstSegment(strings.TrimPrefix(parsed.Path, "/")); id != "" {
			return cleanID(id)
		}

		return "", fmt.Errorf("ytutil.ExtractVideoID: no path content found in youtu.be url")
	}

	for _, prefix := range pathPrefixes {
		if i := strings.Index(parsed.Path, prefix); i >= 0 {
			if id := firstSegment(parsed.Path[i+len(prefix):]); id != "" {
				return cleanID(id)
			}
		}
	}

	return "", fmt.Errorf("ytutil.ExtractVideoID: invalid url or id; could not find a known pattern")
}

func firstSegment(s string) string {
	if i := strings.IndexAny(s, "/?#&"); i >= 0 {
		s = s[:i]
	}

	return s
}

func cleanID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("ytutil.ExtractVideoID: empty video id")
	}

	return id, nil
}

func ChannelURL(id string) string {
	if id == "" {
		return ""
	}

	return ChannelBaseURL + id
}
