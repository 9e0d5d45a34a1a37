package wiki

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/abhisek/wikiquiz/internal/lang"
)

// NormalizeTitle title-cases each whitespace-separated token of text using
// the casing rules of l, and joins the tokens with single spaces. Letters
// after the first in each token are left as typed, so acronyms survive.
func NormalizeTitle(text string, l lang.Language) string {
	tag := language.Und
	if code, err := lang.CodeFor(l); err == nil {
		tag = language.Make(code)
	}
	caser := cases.Title(tag, cases.NoLower)

	fields := strings.Fields(text)
	for i, f := range fields {
		fields[i] = caser.String(f)
	}
	return strings.Join(fields, " ")
}
