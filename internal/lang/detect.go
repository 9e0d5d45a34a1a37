package lang

import (
	"github.com/pemistahl/lingua-go"
)

var linguaLanguages = map[Language]lingua.Language{
	English:    lingua.English,
	German:     lingua.German,
	Spanish:    lingua.Spanish,
	Chinese:    lingua.Chinese,
	Japanese:   lingua.Japanese,
	Russian:    lingua.Russian,
	French:     lingua.French,
	Italian:    lingua.Italian,
	Portuguese: lingua.Portuguese,
}

// Detector guesses which catalog language a text is written in.
// It is safe for concurrent use.
type Detector struct {
	detector lingua.LanguageDetector
	reverse  map[lingua.Language]Language
}

// NewDetector builds a detector restricted to the catalog languages.
// Language models are loaded lazily on first use.
func NewDetector() *Detector {
	langs := make([]lingua.Language, 0, len(linguaLanguages))
	reverse := make(map[lingua.Language]Language, len(linguaLanguages))
	for _, l := range All() {
		ll := linguaLanguages[l]
		langs = append(langs, ll)
		reverse[ll] = l
	}

	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(langs...).
			Build(),
		reverse: reverse,
	}
}

// Detect returns the most likely language of text. The second result is
// false when the text is too short or ambiguous to decide.
func (d *Detector) Detect(text string) (Language, bool) {
	ll, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	l, ok := d.reverse[ll]
	return l, ok
}
