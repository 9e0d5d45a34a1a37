package lang

import (
	"errors"
	"testing"
)

func TestLanguageFor(t *testing.T) {
	tests := []struct {
		code string
		want Language
	}{
		{"en", English},
		{"EN-US", English},
		{"de", German},
		{"es-419", Spanish},
		{"zh-Hant", Chinese},
		{"JA", Japanese},
		{"ru", Russian},
		{"fr-CA", French},
		{"it", Italian},
		{"pt-BR", Portuguese},
	}
	for _, tt := range tests {
		got, err := LanguageFor(tt.code)
		if err != nil {
			t.Errorf("LanguageFor(%q) unexpected error: %v", tt.code, err)
			continue
		}
		if got != tt.want {
			t.Errorf("LanguageFor(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestLanguageFor_Invalid(t *testing.T) {
	for _, code := range []string{"", " ", "x", "xx", "nl", "klingon"} {
		_, err := LanguageFor(code)
		if err == nil {
			t.Errorf("LanguageFor(%q) expected error", code)
			continue
		}
		var langErr *LanguageError
		if !errors.As(err, &langErr) {
			t.Fatalf("expected *LanguageError, got %T", err)
		}
		if code != " " && langErr.Code != code {
			t.Errorf("LanguageError.Code = %q, want %q", langErr.Code, code)
		}
	}
}

func TestCodeFor(t *testing.T) {
	for _, l := range All() {
		code, err := CodeFor(l)
		if err != nil {
			t.Fatalf("CodeFor(%q): %v", l, err)
		}
		back, err := LanguageFor(code)
		if err != nil {
			t.Fatalf("LanguageFor(%q): %v", code, err)
		}
		if back != l {
			t.Errorf("round trip %q -> %q -> %q", l, code, back)
		}
	}

	_, err := CodeFor(Language("Dutch"))
	var langErr *LanguageError
	if !errors.As(err, &langErr) {
		t.Fatalf("expected *LanguageError for Dutch, got %v", err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Language
		wantErr bool
	}{
		{"german", German, false},
		{"Portuguese", Portuguese, false},
		{"it", Italian, false},
		{"en-GB", English, false},
		{"Dutch", "", true},
		{"Esperanto", "", true},
		{"english language", "", true},
		{"zh_Hans", Chinese, false},
		{"es-", "", true},
		{"e1", "", true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAll_StableOrder(t *testing.T) {
	all := All()
	if len(all) != 9 {
		t.Fatalf("expected 9 languages, got %d", len(all))
	}
	if all[0] != English || all[len(all)-1] != Portuguese {
		t.Errorf("unexpected order: %v", all)
	}
}

func TestDetector(t *testing.T) {
	d := NewDetector()

	got, ok := d.Detect("George Washington was the first president of the United States and commanded the Continental Army.")
	if !ok {
		t.Fatal("expected a detection for English text")
	}
	if got != English {
		t.Errorf("Detect = %q, want English", got)
	}

	got, ok = d.Detect("Die Bundesrepublik Deutschland ist ein Bundesstaat in Mitteleuropa und besteht aus sechzehn Ländern.")
	if !ok || got != German {
		t.Errorf("Detect = %q (%v), want German", got, ok)
	}
}
