package enums

import "fmt"

// Language is the book's publication language.
type Language string

const (
	LanguageEnglish    Language = "english"
	LanguageSpanish    Language = "spanish"
	LanguageFrench     Language = "french"
	LanguageGerman     Language = "german"
	LanguageItalian    Language = "italian"
	LanguagePortuguese Language = "portuguese"
	LanguageOther      Language = "other"
)

var validLanguages = []Language{
	LanguageEnglish,
	LanguageSpanish,
	LanguageFrench,
	LanguageGerman,
	LanguageItalian,
	LanguagePortuguese,
	LanguageOther,
}

// String implements fmt.Stringer.
func (l Language) String() string {
	return string(l)
}

// IsValid reports whether the value is a known Language.
func (l Language) IsValid() bool {
	for _, candidate := range validLanguages {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLanguage converts raw input into a Language.
func ParseLanguage(value string) (Language, error) {
	for _, candidate := range validLanguages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid language %q", value)
}
