package voice

import (
	"sort"
	"strconv"
	"strings"
)

// kanaNumerals maps hiragana readings to their value. Katakana spellings are
// derived from these at init. The one-kana readings し and く are left out:
// they occur inside everyday words far more often than as dictated numbers.
var kanaNumerals = map[string]int{
	"ぜろ": 0, "れい": 0,
	"いち": 1,
	"に":  2,
	"さん": 3,
	"よん": 4,
	"ご":  5,
	"ろく": 6,
	"なな": 7, "しち": 7,
	"はち":  8,
	"きゅう": 9,
	"じゅう":   10,
	"じゅういち": 11,
	"じゅうに":  12,
	"じゅうさん": 13,
	"じゅうよん": 14, "じゅうし": 14,
	"じゅうご": 15,
}

var kanjiNumerals = map[string]int{
	"〇": 0, "零": 0,
	"一": 1, "二": 2, "三": 3, "四": 4, "五": 5,
	"六": 6, "七": 7, "八": 8, "九": 9, "十": 10,
	"十一": 11, "十二": 12, "十三": 13, "十四": 14, "十五": 15,
}

var englishNumerals = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13,
	"fourteen": 14, "fifteen": 15,
}

var (
	// japaneseNumerals holds kanji, hiragana and katakana spellings.
	japaneseNumerals = make(map[string]int)

	// japaneseNumeralKeys is sorted longest first for greedy matching.
	japaneseNumeralKeys []string
)

func init() {
	for k, v := range kanjiNumerals {
		japaneseNumerals[k] = v
	}
	for k, v := range kanaNumerals {
		japaneseNumerals[k] = v
		japaneseNumerals[toKatakana(k)] = v
	}
	for k := range japaneseNumerals {
		japaneseNumeralKeys = append(japaneseNumeralKeys, k)
	}
	sort.Slice(japaneseNumeralKeys, func(i, j int) bool {
		a, b := japaneseNumeralKeys[i], japaneseNumeralKeys[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
}

// Normalize converts a single spoken or written numeral to its integer value.
//
// Digit literals are returned as-is with no range check, so "333" yields 333.
// Anything else is looked up case-insensitively in the Japanese (kanji, kana)
// and English tables covering 0–15. ok is false when token is not a numeral.
func Normalize(token string) (n int, ok bool) {
	token = foldText(token)
	if token == "" {
		return 0, false
	}
	if isDigits(token) {
		n, err := strconv.Atoi(token)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	if n, ok := japaneseNumerals[token]; ok {
		return n, true
	}
	if n, ok := englishNumerals[token]; ok {
		return n, true
	}
	return 0, false
}

// longestNumeralPrefix returns the longest Japanese numeral spelling that
// prefixes s, or "".
func longestNumeralPrefix(s string) string {
	for _, k := range japaneseNumeralKeys {
		if strings.HasPrefix(s, k) {
			return k
		}
	}
	return ""
}

// toKatakana shifts hiragana runes into the katakana block.
func toKatakana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'ぁ' && r <= 'ゖ' {
			return r + 0x60
		}
		return r
	}, s)
}
