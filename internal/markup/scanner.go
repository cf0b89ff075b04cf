// Package markup scans authored content for video references and renders
// resolved references as HTML5 video markup.
//
// Two source encodings are recognized:
//
//	```streamable
//	video: abc123
//	poster: /files/poster.jpg
//	options: controls muted autoplay loop
//	```
//
// and an image whose payload carries a compact JSON object:
//
//	![video]({"video": "abc123", "poster": "/files/poster.jpg", "options": "muted"})
package markup

import (
	"encoding/json"
	"regexp"
	"strings"

	"video-embed-pipeline/internal/domain"
)

// FenceSentinel is the info string marking a fenced video reference block.
const FenceSentinel = "streamable"

var (
	// FencedBlockPattern matches candidate fenced reference blocks inside a
	// whole document.
	FencedBlockPattern = regexp.MustCompile("(?s)```" + FenceSentinel + "\r?\n.*?```")

	// InlineImagePattern matches candidate image markup inside a whole
	// document. Non-reference images fall out at the scanning stage.
	InlineImagePattern = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)

	// mediaURLPattern matches resolved media URLs in rendered output. The
	// aggregation pass extracts IDs from these, never from the authored
	// shorthand, because it runs after embedding.
	mediaURLPattern = regexp.MustCompile(`streamable\.com/video/mp4/([A-Za-z0-9_-]+)\.mp4`)
)

// ScanFencedBlock parses a fenced reference block. It returns matched=false
// for blocks without the sentinel (the markup passes through untouched), and
// domain.ErrMissingVideoID when the sentinel matched but no video: line is
// present.
func ScanFencedBlock(block string) (ref domain.Reference, matched bool, err error) {
	rest, ok := strings.CutPrefix(block, "```"+FenceSentinel)
	if !ok {
		return domain.Reference{}, false, nil
	}
	// The sentinel must be the whole info string.
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 || strings.TrimRight(rest[:nl], "\r") != "" {
		return domain.Reference{}, false, nil
	}

	body := rest[nl+1:]
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}

	ref = domain.Reference{Form: domain.FormFenced}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "video: "):
			ref.ID = strings.TrimPrefix(line, "video: ")
		case strings.HasPrefix(line, "poster: "):
			ref.Poster = strings.TrimPrefix(line, "poster: ")
		case strings.HasPrefix(line, "options: "):
			ref.Options = strings.TrimPrefix(line, "options: ")
		}
	}

	if ref.ID == "" {
		return domain.Reference{}, true, domain.ErrMissingVideoID
	}

	return ref, true, nil
}

// ScanInlineImage parses image markup whose payload is a compact JSON
// reference object. Anything that does not decode to an object with a video
// ID is not a reference: matched=false, no diagnostic, markup untouched.
func ScanInlineImage(image string) (ref domain.Reference, matched bool) {
	start := strings.IndexByte(image, '{')
	if start < 0 {
		return domain.Reference{}, false
	}
	payload := image[start:]
	end := strings.LastIndexByte(payload, '}')
	if end < 0 {
		return domain.Reference{}, false
	}

	if err := json.Unmarshal([]byte(payload[:end+1]), &ref); err != nil {
		return domain.Reference{}, false
	}
	if ref.ID == "" {
		return domain.Reference{}, false
	}
	ref.Form = domain.FormInline

	return ref, true
}

// ExtractVideoIDs returns the distinct video IDs referenced by resolved
// media URLs in a rendered body, in order of first appearance. Duplicate
// references collapse so each ID counts once per document.
func ExtractVideoIDs(rendered string) []string {
	matches := mediaURLPattern.FindAllStringSubmatch(rendered, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		id := m[1]
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids
}
