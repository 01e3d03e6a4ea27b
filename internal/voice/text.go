package voice

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// foldText prepares ASR output for matching:
//   - NFKC normalization (full-width digits and letters become ASCII,
//     half-width katakana become full-width)
//   - unicode spaces become plain spaces
//   - lower case, trimmed
//
// NFKC is used rather than a decomposing form so that voiced kana such as
// "じ" stay single runes and match the numeral tables.
func foldText(text string) string {
	text = norm.NFKC.String(text)
	text = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, text)
	return strings.ToLower(strings.TrimSpace(text))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// isCommaOrSpace reports the delimiters used by the bleeding and mobility
// parsers and by the pocket-depth fallback tokenizer.
func isCommaOrSpace(r rune) bool {
	return r == ',' || r == '、' || unicode.IsSpace(r)
}

func isComma(r rune) bool {
	return r == ',' || r == '、'
}

// splitDelimited splits folded text on commas, ideographic commas and
// whitespace.
func splitDelimited(text string) []string {
	return strings.FieldsFunc(text, isCommaOrSpace)
}

// splitCommas splits folded text on commas only, trimming each piece.
func splitCommas(text string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(text, isComma) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// compoundTokens scans folded text for numeral phrases:
//   - maximal runs of ASCII digits form one token
//   - maximal runs of ASCII letters form one token when they spell an English
//     numeral
//   - otherwise a run of Japanese numeral spellings is taken, longest
//     spelling first, so "じゅういち" is one token rather than "じゅう" + "いち";
//     the run only counts when it is not part of a longer kana or kanji word
//     ("ください", "十分")
//
// Everything else is skipped one rune at a time.
func compoundTokens(text string) []string {
	var tokens []string
	for i := 0; i < len(text); {
		switch c := text[i]; {
		case c >= '0' && c <= '9':
			j := i
			for j < len(text) && text[j] >= '0' && text[j] <= '9' {
				j++
			}
			tokens = append(tokens, text[i:j])
			i = j
		case isASCIILetter(c):
			j := i
			for j < len(text) && isASCIILetter(text[j]) {
				j++
			}
			if _, ok := englishNumerals[text[i:j]]; ok {
				tokens = append(tokens, text[i:j])
			}
			i = j
		default:
			if run, end := numeralRun(text, i); len(run) > 0 && standsAlone(text, i, end) {
				tokens = append(tokens, run...)
				i = end
				continue
			}
			_, size := utf8.DecodeRuneInString(text[i:])
			i += size
		}
	}
	return tokens
}

// numeralRun returns the consecutive Japanese numeral spellings starting at
// text[i:] and the offset just past them.
func numeralRun(text string, i int) (run []string, end int) {
	end = i
	for {
		k := longestNumeralPrefix(text[end:])
		if k == "" {
			return run, end
		}
		run = append(run, k)
		end += len(k)
	}
}

// standsAlone reports whether text[start:end] is bounded by something other
// than kana or kanji.
func standsAlone(text string, start, end int) bool {
	before, _ := utf8.DecodeLastRuneInString(text[:start])
	after, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(before) && !isWordRune(after)
}

// isWordRune reports kana, kanji and the long vowel mark. と joins spoken
// numbers ("三と四") and is not treated as part of a word.
func isWordRune(r rune) bool {
	if r == 'と' {
		return false
	}
	return r == 'ー' || unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han)
}
