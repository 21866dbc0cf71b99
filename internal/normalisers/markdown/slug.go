package markdown

import (
	"strings"
	"unicode"
)

// Transliterator maps a rune to its ASCII spelling, or "" to drop it.
// Slug generation is locale specific; swapping the transliterator adapts
// the indexer to another corpus alphabet without touching control flow.
type Transliterator func(r rune) string

// cyrillicToLatin is the default mapping for a Russian-language corpus.
var cyrillicToLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// DefaultTransliterator spells Cyrillic letters in Latin and passes
// ASCII letters and digits through unchanged.
func DefaultTransliterator(r rune) string {
	if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
		return string(r)
	}
	if r >= 'A' && r <= 'Z' {
		return string(r + ('a' - 'A'))
	}
	if mapped, ok := cyrillicToLatin[r]; ok {
		return mapped
	}
	if mapped, ok := cyrillicToLatin[r+('а'-'А')]; ok && r >= 'А' && r <= 'Я' {
		return mapped
	}
	if r == 'Ё' {
		return "yo"
	}
	return ""
}

// Slugify turns heading text into an anchor: transliterate to ASCII,
// hyphenate everything else, trim leading/trailing hyphens.
func Slugify(text string, translit Transliterator) string {
	if translit == nil {
		translit = DefaultTransliterator
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.TrimSpace(text) {
		mapped := translit(r)
		if mapped == "" {
			// Silent letters (hard/soft signs) drop without a break;
			// anything else separates words.
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				pendingHyphen = b.Len() > 0
			}
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteString(mapped)
	}
	return b.String()
}
