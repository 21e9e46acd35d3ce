package profile_test

import (
	"testing"

	"github.com/valpere/codetran/internal/profile"
)

func TestForExtension_Known(t *testing.T) {
	tests := []struct {
		ext  string
		lang string
	}{
		{".py", "python"},
		{".js", "javascript"},
		{".ts", "javascript"},
		{".c", "javascript"},
		{".hpp", "javascript"},
		{".java", "java"},
		{".go", "go"},
		{".rs", "rust"},
		{".GO", "go"}, // case-insensitive
	}
	for _, tt := range tests {
		p, ok := profile.ForExtension(tt.ext)
		if !ok {
			t.Errorf("ForExtension(%q): not supported", tt.ext)
			continue
		}
		if p.Language != tt.lang {
			t.Errorf("ForExtension(%q) = %s, want %s", tt.ext, p.Language, tt.lang)
		}
	}
}

func TestForExtension_Unknown(t *testing.T) {
	for _, ext := range []string{".txt", ".md", "", ".exe"} {
		if _, ok := profile.ForExtension(ext); ok {
			t.Errorf("ForExtension(%q): expected not supported", ext)
		}
	}
}

func TestRustDocCommentsDistinct(t *testing.T) {
	p, ok := profile.ForExtension(".rs")
	if !ok {
		t.Fatal("rust profile missing")
	}
	if len(p.DocLineComments) == 0 {
		t.Fatal("rust profile should define doc line comments")
	}
	if !p.BlockComments[0].Nest {
		t.Error("rust block comments should nest")
	}
}

func TestPythonHasNoBlockComments(t *testing.T) {
	p, _ := profile.ForExtension(".py")
	if len(p.BlockComments) != 0 {
		t.Errorf("python should have no block comments, got %d", len(p.BlockComments))
	}
	if len(p.Docstrings) != 2 {
		t.Errorf("python should have two docstring forms, got %d", len(p.Docstrings))
	}
}

func TestGoRawStringHasNoEscape(t *testing.T) {
	p, _ := profile.ForExtension(".go")
	var raw *profile.StringDelim
	for i := range p.Strings {
		if p.Strings[i].Quote == "`" {
			raw = &p.Strings[i]
		}
	}
	if raw == nil {
		t.Fatal("go profile missing raw string delimiter")
	}
	if raw.Escape != 0 {
		t.Error("raw strings must not define an escape character")
	}
}

func TestKindString(t *testing.T) {
	if profile.LineComment.String() != "line_comment" {
		t.Error("unexpected name for LineComment")
	}
	if profile.StringLiteral.String() != "string_literal" {
		t.Error("unexpected name for StringLiteral")
	}
}

func TestLanguagesSorted(t *testing.T) {
	langs := profile.Languages()
	if len(langs) != 5 {
		t.Fatalf("expected 5 languages, got %d: %v", len(langs), langs)
	}
	for i := 1; i < len(langs); i++ {
		if langs[i-1] >= langs[i] {
			t.Errorf("languages not sorted: %v", langs)
		}
	}
}
