package sanitize

import (
	"strings"
	"testing"
)

func TestClean_ScriptStripped(t *testing.T) {
	s := New()
	res := s.Clean(`<script>alert(1)</script><p>hi</p>`)

	if !res.IsValid {
		t.Fatalf("IsValid: got false, err=%q", res.Err)
	}
	if !res.WasModified {
		t.Error("WasModified: want true after script removal")
	}
	if !strings.Contains(res.SanitizedHTML, "<p>hi</p>") {
		t.Errorf("SanitizedHTML: got %q, want <p>hi</p> kept", res.SanitizedHTML)
	}
	if strings.Contains(res.SanitizedHTML, "script") || strings.Contains(res.SanitizedHTML, "alert") {
		t.Errorf("SanitizedHTML: script content leaked: %q", res.SanitizedHTML)
	}
}

func TestClean_EventHandlerStripped(t *testing.T) {
	s := New()
	res := s.Clean(`<p onclick="steal()">hi</p>`)
	if strings.Contains(res.SanitizedHTML, "onclick") {
		t.Errorf("onclick survived: %q", res.SanitizedHTML)
	}
	if !res.WasModified {
		t.Error("WasModified: want true")
	}
}

func TestClean_CleanMarkupUnmodified(t *testing.T) {
	s := New()
	in := `<p class="text-lg">hello <strong>world</strong></p>`
	res := s.Clean(in)

	if !res.IsValid {
		t.Fatalf("IsValid: got false, err=%q", res.Err)
	}
	if res.WasModified {
		t.Errorf("WasModified: want false for clean input, got output %q", res.SanitizedHTML)
	}
	if !strings.Contains(res.SanitizedHTML, `class="text-lg"`) {
		t.Errorf("class attribute lost: %q", res.SanitizedHTML)
	}
}

func TestClean_TextContentFallback(t *testing.T) {
	s := New()
	res := s.Clean(`<p>first</p><p>second</p>`)
	if res.TextContent == "" {
		t.Fatal("TextContent: empty")
	}
	for _, want := range []string{"first", "second"} {
		if !strings.Contains(res.TextContent, want) {
			t.Errorf("TextContent %q: missing %q", res.TextContent, want)
		}
	}
}

func TestClean_EmptyInvalid(t *testing.T) {
	s := New()
	res := s.Clean("   ")
	if res.IsValid {
		t.Error("IsValid: want false for blank input")
	}
	if res.Err == "" {
		t.Error("Err: want a reason")
	}
}

func TestClean_NothingSurvives(t *testing.T) {
	s := New()
	res := s.Clean(`<script>only()</script>`)
	if res.IsValid {
		t.Error("IsValid: want false when nothing structural survives")
	}
	if res.SanitizedHTML != "" {
		t.Errorf("SanitizedHTML: got %q, want empty", res.SanitizedHTML)
	}
}

func TestClean_TooLarge(t *testing.T) {
	s := New()
	res := s.Clean("<p>" + strings.Repeat("a", MaxInputBytes) + "</p>")
	if res.IsValid {
		t.Error("IsValid: want false for oversized input")
	}
}

func TestClean_ListSurvivesInText(t *testing.T) {
	s := New()
	res := s.Clean(`<ul><li>one</li><li>two</li></ul>`)
	if !strings.Contains(res.TextContent, "one") || !strings.Contains(res.TextContent, "two") {
		t.Errorf("TextContent %q: list items lost", res.TextContent)
	}
}
