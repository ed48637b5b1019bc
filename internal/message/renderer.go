// Package message renders the outreach draft from a template and the fields
// extracted by the decision oracle.
package message

import (
	"strings"

	"github.com/dlukin/scout-responder/internal/decision"
)

// MaxChars is the hard character budget for a rendered message. Rendered
// text exceeding it is cut to exactly this many characters, not word-aware.
const MaxChars = 500

const (
	slotName     = "[Name]"
	nameFallback = "there"

	defaultFiller = "your recent work"
)

// genericSlots are replaced with the first extracted tag when available,
// otherwise with the configured filler. Unrecognized bracketed slots pass
// through untouched.
var genericSlots = []string{"[project/skill]", "[specific ability]"}

// Renderer fills template slots, strips banned phrases and clamps length.
type Renderer struct {
	filler string
	banned []string
}

// NewRenderer configures the generic-slot filler (defaulted when empty) and
// the banned phrase list. Banned phrases are removed verbatim, case-sensitive.
func NewRenderer(filler string, banned []string) *Renderer {
	if strings.TrimSpace(filler) == "" {
		filler = defaultFiller
	}

	return &Renderer{filler: filler, banned: banned}
}

// Render fills the template from the decision result. Slot filling runs
// first, then banned-phrase removal, then the MaxChars clamp, in that order.
func (r *Renderer) Render(template string, res *decision.Result) string {
	out := template

	name := nameFallback
	filler := r.filler
	if res != nil {
		if n := strings.TrimSpace(res.Extracted.Name); n != "" {
			name = n
		}
		if len(res.Extracted.Tags) > 0 {
			if tag := strings.TrimSpace(res.Extracted.Tags[0]); tag != "" {
				filler = tag
			}
		}
	}

	out = strings.ReplaceAll(out, slotName, name)
	for _, slot := range genericSlots {
		out = strings.ReplaceAll(out, slot, filler)
	}

	for _, phrase := range r.banned {
		if phrase == "" {
			continue
		}
		out = strings.ReplaceAll(out, phrase, "")
	}

	return Clamp(out)
}

// Clamp cuts s to exactly MaxChars characters when it is longer.
func Clamp(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxChars {
		return s
	}
	return string(runes[:MaxChars])
}
