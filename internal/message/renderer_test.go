package message

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dlukin/scout-responder/internal/decision"
)

func TestRenderFillsNameSlot(t *testing.T) {
	r := NewRenderer("", nil)
	res := &decision.Result{Extracted: decision.Extracted{Name: "Anna"}}

	got := r.Render("Hi [Name], loved your profile!", res)
	if got != "Hi Anna, loved your profile!" {
		t.Fatalf("unexpected render: %q", got)
	}
}

func TestRenderNameFallback(t *testing.T) {
	r := NewRenderer("", nil)

	got := r.Render("Hi [Name]!", &decision.Result{})
	if got != "Hi there!" {
		t.Fatalf("unexpected render: %q", got)
	}

	if got := r.Render("Hi [Name]!", nil); got != "Hi there!" {
		t.Fatalf("nil result must fall back, got %q", got)
	}
}

func TestRenderGenericSlots(t *testing.T) {
	r := NewRenderer("", nil)

	t.Run("first extracted tag wins", func(t *testing.T) {
		res := &decision.Result{Extracted: decision.Extracted{Tags: []string{"EEG pipelines", "go"}}}
		got := r.Render("I was impressed by [project/skill].", res)
		if got != "I was impressed by EEG pipelines." {
			t.Fatalf("unexpected render: %q", got)
		}
	})

	t.Run("filler when no tags", func(t *testing.T) {
		got := r.Render("Your [specific ability] stood out.", &decision.Result{})
		if got != "Your your recent work stood out." {
			t.Fatalf("unexpected render: %q", got)
		}
	})

	t.Run("unrecognized slots pass through", func(t *testing.T) {
		got := r.Render("Regarding [Company] roles", &decision.Result{})
		if got != "Regarding [Company] roles" {
			t.Fatalf("unexpected render: %q", got)
		}
	})
}

func TestRenderStripsBannedPhrases(t *testing.T) {
	r := NewRenderer("", []string{"guaranteed interview", "100% match"})

	got := r.Render("We offer a guaranteed interview and a 100% match for you.", &decision.Result{})
	if strings.Contains(got, "guaranteed interview") || strings.Contains(got, "100% match") {
		t.Fatalf("banned phrase survived: %q", got)
	}

	// Removal is case-sensitive exact match.
	got = r.Render("A Guaranteed Interview awaits.", &decision.Result{})
	if !strings.Contains(got, "Guaranteed Interview") {
		t.Fatalf("differently-cased text must be untouched: %q", got)
	}
}

func TestRenderClampsToMaxChars(t *testing.T) {
	r := NewRenderer("", nil)

	long := strings.Repeat("é", MaxChars+100)
	got := r.Render(long, &decision.Result{})
	if utf8.RuneCountInString(got) != MaxChars {
		t.Fatalf("expected exactly %d chars, got %d", MaxChars, utf8.RuneCountInString(got))
	}

	short := "short message"
	if got := r.Render(short, &decision.Result{}); got != short {
		t.Fatalf("short messages must not be touched: %q", got)
	}
}
