// Package lang holds the catalog of supported content languages and maps
// them to Wikipedia language codes.
package lang

import (
	"fmt"
	"strings"
)

// Language is a content language supported by the quiz pipeline.
type Language string

const (
	English    Language = "English"
	German     Language = "German"
	Spanish    Language = "Spanish"
	Chinese    Language = "Chinese"
	Japanese   Language = "Japanese"
	Russian    Language = "Russian"
	French     Language = "French"
	Italian    Language = "Italian"
	Portuguese Language = "Portuguese"
)

// catalog is ordered; All and the CLI listing rely on it.
var catalog = []struct {
	lang Language
	code string
}{
	{English, "en"},
	{German, "de"},
	{Spanish, "es"},
	{Chinese, "zh"},
	{Japanese, "ja"},
	{Russian, "ru"},
	{French, "fr"},
	{Italian, "it"},
	{Portuguese, "pt"},
}

// LanguageError reports a language or code outside the catalog.
type LanguageError struct {
	Code string
}

func (e *LanguageError) Error() string {
	if e.Code == "" {
		return "language code is empty"
	}
	return fmt.Sprintf("unsupported language %q", e.Code)
}

// CodeFor returns the two-letter content-source code for l.
func CodeFor(l Language) (string, error) {
	for _, c := range catalog {
		if c.lang == l {
			return c.code, nil
		}
	}
	return "", &LanguageError{Code: string(l)}
}

// LanguageFor resolves a code such as "en" or "EN-US". Only the first two
// characters are considered, case-insensitively.
func LanguageFor(code string) (Language, error) {
	code = strings.TrimSpace(code)
	if len(code) < 2 {
		return "", &LanguageError{Code: code}
	}
	prefix := strings.ToLower(code[:2])
	for _, c := range catalog {
		if c.code == prefix {
			return c.lang, nil
		}
	}
	return "", &LanguageError{Code: code}
}

// Parse accepts either a code ("de", "pt-BR") or an English language name
// ("german"). Any other input, such as an unknown name, is an error.
func Parse(s string) (Language, error) {
	s = strings.TrimSpace(s)
	for _, c := range catalog {
		if strings.EqualFold(string(c.lang), s) {
			return c.lang, nil
		}
	}
	if !looksLikeCode(s) {
		return "", &LanguageError{Code: s}
	}
	return LanguageFor(s)
}

// looksLikeCode reports whether s is two letters, optionally followed by
// a "-" or "_" subtag ("en", "pt-BR", "zh_Hans").
func looksLikeCode(s string) bool {
	if len(s) < 2 || !isLetter(s[0]) || !isLetter(s[1]) {
		return false
	}
	return len(s) == 2 || (len(s) > 3 && (s[2] == '-' || s[2] == '_'))
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// Code is like CodeFor but panics on languages outside the catalog. Use it
// only on values that came out of this package.
func (l Language) Code() string {
	code, err := CodeFor(l)
	if err != nil {
		panic(err)
	}
	return code
}

// All returns every supported language in catalog order.
func All() []Language {
	out := make([]Language, len(catalog))
	for i, c := range catalog {
		out[i] = c.lang
	}
	return out
}
