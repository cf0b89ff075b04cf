package domain

// ReferenceForm tags which source encoding a reference was scanned from.
type ReferenceForm string

const (
	// FormFenced is the fenced code-block form with video:/poster:/options:
	// lines.
	FormFenced ReferenceForm = "fenced"
	// FormInline is the image form carrying a compact JSON payload.
	FormInline ReferenceForm = "inline"
)

// Reference is a normalized video reference extracted from authored content.
// Both source forms collapse into the same three fields.
type Reference struct {
	// ID is the upstream video identifier. Always non-empty for a valid
	// reference.
	ID string `json:"video"`
	// Poster is an optional poster image URL or path.
	Poster string `json:"poster,omitempty"`
	// Options is a free-text attribute string appended to the video element,
	// e.g. "controls muted loop". Defaults to empty.
	Options string `json:"options,omitempty"`

	Form ReferenceForm `json:"-"`
}
