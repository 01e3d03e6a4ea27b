package main

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"perio_dictation/internal/voice"
)

// thresholdsKey holds per-clinic disambiguator overrides in a vocabulary file.
const thresholdsKey = "thresholds"

// NewClinicProfile builds a clinic parser from a decoded vocabulary file.
// Mode keys are matched case-insensitively against parseModeKey; unknown keys
// are logged and skipped. base carries the service-wide parser options and
// baseThresholds the service-wide cut-offs that the file may override.
func NewClinicProfile(raw FlexibleVocabulary, filePath string, baseThresholds voice.Thresholds, base []voice.Option) (*ClinicProfile, error) {
	extra := make(map[voice.InputMode][]string)
	thresholds := baseThresholds

	for key, value := range raw {
		if strings.EqualFold(key, thresholdsKey) {
			th, err := applyThresholds(thresholds, value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", filePath, err)
			}
			thresholds = th
			continue
		}

		mode, ok := parseModeKey(key)
		if !ok {
			slog.Warn("vocabulary: unknown mode key", "key", key, "file", filePath)
			continue
		}
		extra[mode] = append(extra[mode], convertToStringSlice(value)...)
	}

	vocab := voice.DefaultVocabulary().Merge(extra)
	opts := append(append([]voice.Option(nil), base...),
		voice.WithVocabulary(vocab),
		voice.WithThresholds(thresholds),
	)

	return &ClinicProfile{
		parser:   voice.New(opts...),
		extra:    extra,
		loadedAt: time.Now(),
		filePath: filePath,
	}, nil
}

// Parse runs the clinic's parser on one utterance.
func (cp *ClinicProfile) Parse(transcript string, mode voice.InputMode, confidence float64) voice.ParsedVoiceData {
	return cp.parser.Parse(transcript, mode, confidence)
}

// extraTriggerCounts reports how many clinic-specific phrases each mode has.
func (cp *ClinicProfile) extraTriggerCounts() map[string]int {
	counts := make(map[string]int, len(cp.extra))
	for mode, phrases := range cp.extra {
		counts[string(mode)] = len(phrases)
	}
	return counts
}

// parseModeKey maps a vocabulary file key to an input mode.
// Examples:
//   - "pocket_depth", "pocket", "ppd" -> pocket depth
//   - "bleeding", "bop"               -> bleeding
//   - "mobility"                      -> mobility
func parseModeKey(key string) (voice.InputMode, bool) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "pocket_depth", "pocketdepth", "pocket", "ppd":
		return voice.ModePocketDepth, true
	case "bleeding", "bop":
		return voice.ModeBleeding, true
	case "mobility":
		return voice.ModeMobility, true
	}
	return "", false
}

// parseMode parses a mode name from a request. Empty yields ok=false.
func parseMode(s string) (voice.InputMode, bool) {
	if m := voice.InputMode(strings.ToLower(strings.TrimSpace(s))); m.IsValid() {
		return m, true
	}
	return parseModeKey(s)
}

// convertToStringSlice converts the JSON or YAML value of a mode key to a
// phrase list.
func convertToStringSlice(value interface{}) []string {
	var result []string

	switch v := value.(type) {
	case []interface{}:
		for _, item := range v {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
	case []string:
		result = v
	case map[string]interface{}:
		// Values only; sorted keys keep the order stable.
		keys := lo.Keys(v)
		sort.Strings(keys)
		for _, k := range keys {
			if str, ok := v[k].(string); ok {
				result = append(result, str)
			}
		}
	case string:
		result = append(result, v)
	}

	return result
}

// applyThresholds overrides the fields of th present in value.
func applyThresholds(th voice.Thresholds, value interface{}) (voice.Thresholds, error) {
	m, ok := value.(map[string]interface{})
	if !ok {
		return th, fmt.Errorf("%s must be an object", thresholdsKey)
	}
	for key, raw := range m {
		f, ok := toFloat(raw)
		if !ok || f < 0 || f > 1 {
			return th, fmt.Errorf("%s.%s must be a number in [0, 1]", thresholdsKey, key)
		}
		switch key {
		case "eleven_literal":
			th.ElevenLiteral = f
		case "double_repeat":
			th.DoubleRepeat = f
		case "triple_repeat":
			th.TripleRepeat = f
		default:
			return th, fmt.Errorf("unknown threshold %q", key)
		}
	}
	return th, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
