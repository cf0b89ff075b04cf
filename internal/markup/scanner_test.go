package markup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-embed-pipeline/internal/domain"
)

func TestScanFencedBlock_AllFields(t *testing.T) {
	block := "```streamable\nvideo: abc123\nposter: /img.jpg\noptions: muted loop\n```"

	ref, matched, err := ScanFencedBlock(block)

	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, "abc123", ref.ID)
	assert.Equal(t, "/img.jpg", ref.Poster)
	assert.Equal(t, "muted loop", ref.Options)
	assert.Equal(t, domain.FormFenced, ref.Form)
}

func TestScanFencedBlock_VideoOnly(t *testing.T) {
	block := "```streamable\nvideo: abc123\n```"

	ref, matched, err := ScanFencedBlock(block)

	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, "abc123", ref.ID)
	assert.Empty(t, ref.Poster)
	assert.Empty(t, ref.Options)
}

func TestScanFencedBlock_CRLF(t *testing.T) {
	block := "```streamable\r\nvideo: abc123\r\nposter: /img.jpg\r\n```"

	ref, matched, err := ScanFencedBlock(block)

	require.NoError(t, err)
	require.True(t, matched)
	assert.Equal(t, "abc123", ref.ID)
	assert.Equal(t, "/img.jpg", ref.Poster)
}

func TestScanFencedBlock_MissingVideoID(t *testing.T) {
	block := "```streamable\nposter: /img.jpg\n```"

	_, matched, err := ScanFencedBlock(block)

	assert.True(t, matched)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingVideoID))
}

func TestScanFencedBlock_NoMatch(t *testing.T) {
	tests := []struct {
		name  string
		block string
	}{
		{"other language", "```go\nfmt.Println()\n```"},
		{"plain fence", "```\nvideo: abc123\n```"},
		{"sentinel is only a prefix", "```streamable-extra\nvideo: abc123\n```"},
		{"not a fence at all", "video: abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, matched, err := ScanFencedBlock(tt.block)

			require.NoError(t, err)
			assert.False(t, matched)
		})
	}
}

func TestScanInlineImage_AllFields(t *testing.T) {
	image := `![]({"video": "abc123", "poster": "/img.jpg", "options": "muted loop"})`

	ref, matched := ScanInlineImage(image)

	require.True(t, matched)
	assert.Equal(t, "abc123", ref.ID)
	assert.Equal(t, "/img.jpg", ref.Poster)
	assert.Equal(t, "muted loop", ref.Options)
	assert.Equal(t, domain.FormInline, ref.Form)
}

func TestScanInlineImage_Defaults(t *testing.T) {
	image := `![]({"video": "abc123"})`

	ref, matched := ScanInlineImage(image)

	require.True(t, matched)
	assert.Equal(t, "abc123", ref.ID)
	assert.Empty(t, ref.Poster)
	assert.Empty(t, ref.Options)
}

func TestScanInlineImage_NoMatch(t *testing.T) {
	tests := []struct {
		name  string
		image string
	}{
		{"ordinary image", "![alt text](/files/photo.jpg)"},
		{"payload is not json", "![]({video: abc123})"},
		{"json without video key", `![]({"poster": "/img.jpg"})`},
		{"empty video id", `![]({"video": ""})`},
		{"no braces", "![video](abc123)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, matched := ScanInlineImage(tt.image)

			assert.False(t, matched)
		})
	}
}

func TestExtractVideoIDs_Dedup(t *testing.T) {
	rendered := `
<video id="streamable-video-player-abc123" class="streamable-video-player">
    <source src="https://cdn-cf-east.streamable.com/video/mp4/abc123.mp4?Expires=1700000000" type="video/mp4">
</video>
<img src="https://cdn-cf-east.streamable.com/image/abc123.jpg">
<source src="https://cdn-cf-east.streamable.com/video/mp4/abc123.mp4?Expires=1700000000" type="video/mp4">
<source src="https://cdn-cf-east.streamable.com/video/mp4/def456.mp4?Expires=1700009999" type="video/mp4">
<source src="https://cdn-cf-east.streamable.com/video/mp4/abc123.mp4?Expires=1700000000" type="video/mp4">
`

	ids := ExtractVideoIDs(rendered)

	assert.Equal(t, []string{"abc123", "def456"}, ids)
}

func TestExtractVideoIDs_NoReferences(t *testing.T) {
	assert.Nil(t, ExtractVideoIDs("<p>no videos here</p>"))
	assert.Nil(t, ExtractVideoIDs("https://example.com/video/mp4/abc123.mp4"))
}

func TestFencedBlockPattern_FindsBlocksInDocument(t *testing.T) {
	doc := "intro\n\n```streamable\nvideo: abc123\n```\n\n```go\ncode\n```\n\noutro"

	matches := FencedBlockPattern.FindAllString(doc, -1)

	require.Len(t, matches, 1)
	assert.Contains(t, matches[0], "video: abc123")
}

func TestInlineImagePattern_FindsImagesInDocument(t *testing.T) {
	doc := `before ![]({"video": "abc123"}) middle ![alt](/photo.jpg) after`

	matches := InlineImagePattern.FindAllString(doc, -1)

	assert.Len(t, matches, 2)
}
