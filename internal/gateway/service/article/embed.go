package article

import "regexp"

var (
	youtubeID = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)
	vimeoID   = regexp.MustCompile(`(?:vimeo\.com/|player\.vimeo\.com/video/)([0-9]+)`)
)

// EmbedURL maps a YouTube or Vimeo watch link to its player URL. Other links
// yield "".
func EmbedURL(videoURL string) string {
	if videoURL == "" {
		return ""
	}
	if m := youtubeID.FindStringSubmatch(videoURL); m != nil {
		return "https://www.youtube.com/embed/" + m[1]
	}
	if m := vimeoID.FindStringSubmatch(videoURL); m != nil {
		return "https://player.vimeo.com/video/" + m[1]
	}
	return ""
}
