package voice

import (
	"sort"
	"strings"
)

// Vocabulary holds the trigger phrases that announce each input mode.
// Phrases are stored folded (NFKC, lower case).
type Vocabulary struct {
	triggers map[InputMode][]string

	// stripOrder lists every trigger of every mode, longest first, so that
	// "動揺度" is removed before "動揺".
	stripOrder []string
}

var defaultTriggers = map[InputMode][]string{
	ModePocketDepth: {"pocket", "depth", "ppd", "ポケット", "ぽけっと", "深さ", "ふかさ"},
	ModeBleeding:    {"bop", "bleeding", "出血", "しゅっけつ", "ブリーディング"},
	ModeMobility:    {"mobility", "動揺度", "動揺", "どうよう", "モビリティ"},
}

// DefaultVocabulary returns the built-in Japanese and English triggers.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(defaultTriggers)
}

// NewVocabulary builds a vocabulary from per-mode trigger lists. Entries for
// unknown modes and empty phrases are ignored.
func NewVocabulary(triggers map[InputMode][]string) *Vocabulary {
	v := &Vocabulary{triggers: make(map[InputMode][]string, len(modePriority))}
	for _, mode := range modePriority {
		v.triggers[mode] = dedupe(nil, triggers[mode])
	}
	v.buildStripOrder()
	return v
}

// Merge returns a new vocabulary with extra appended to v's triggers.
// v is not modified.
func (v *Vocabulary) Merge(extra map[InputMode][]string) *Vocabulary {
	out := &Vocabulary{triggers: make(map[InputMode][]string, len(modePriority))}
	for _, mode := range modePriority {
		out.triggers[mode] = dedupe(v.triggers[mode], extra[mode])
	}
	out.buildStripOrder()
	return out
}

// Triggers returns a copy of the folded trigger phrases for mode.
func (v *Vocabulary) Triggers(mode InputMode) []string {
	return append([]string(nil), v.triggers[mode]...)
}

// DetectModeSwitch reports the first mode, in priority order pocket depth,
// bleeding, mobility, whose trigger vocabulary occurs in transcript.
func (v *Vocabulary) DetectModeSwitch(transcript string) (InputMode, bool) {
	return v.detect(foldText(transcript))
}

func (v *Vocabulary) detect(folded string) (InputMode, bool) {
	for _, mode := range modePriority {
		if containsAny(folded, v.triggers[mode]) {
			return mode, true
		}
	}
	return "", false
}

// strip removes every trigger phrase from folded text.
func (v *Vocabulary) strip(folded string) string {
	for _, t := range v.stripOrder {
		folded = strings.ReplaceAll(folded, t, " ")
	}
	return strings.TrimSpace(folded)
}

func (v *Vocabulary) buildStripOrder() {
	v.stripOrder = v.stripOrder[:0]
	for _, mode := range modePriority {
		v.stripOrder = append(v.stripOrder, v.triggers[mode]...)
	}
	sort.SliceStable(v.stripOrder, func(i, j int) bool {
		return len(v.stripOrder[i]) > len(v.stripOrder[j])
	})
}

func dedupe(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, phrase := range list {
			phrase = foldText(phrase)
			if phrase == "" {
				continue
			}
			if _, ok := seen[phrase]; ok {
				continue
			}
			seen[phrase] = struct{}{}
			out = append(out, phrase)
		}
	}
	return out
}
