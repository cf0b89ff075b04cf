package markup

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"video-embed-pipeline/internal/domain"
)

// RenderVideo produces the HTML5 element for a resolved reference. The
// source type is derived from the resolved URL's path extension; poster and
// options appear only when non-empty.
func RenderVideo(ref domain.Reference, mediaURL string) string {
	attrs := []string{
		fmt.Sprintf("id=%q", "streamable-video-player-"+ref.ID),
		`class="streamable-video-player"`,
	}
	if ref.Poster != "" {
		attrs = append(attrs, fmt.Sprintf("poster=%q", ref.Poster))
	}
	if ref.Options != "" {
		attrs = append(attrs, ref.Options)
	}

	return fmt.Sprintf("<video %s>\n    <source src=%q type=%q>\n</video>",
		strings.Join(attrs, " "), mediaURL, "video/"+mediaType(mediaURL))
}

// mediaType returns the lower-cased path extension of the media URL.
func mediaType(mediaURL string) string {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return ""
	}

	return strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
}
