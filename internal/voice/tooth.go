package voice

import (
	"strings"
)

// toothSuffixes are counter words that may follow a tooth number ("16番").
var toothSuffixes = []string{"番", "ばん"}

// ParseToothNumber validates an FDI tooth identifier: exactly two digits,
// optionally followed by 番/ばん, with quadrant 1–4 and position 1–8.
func ParseToothNumber(token string) (ToothNumber, bool) {
	token = foldText(token)
	for _, s := range toothSuffixes {
		if strings.HasSuffix(token, s) {
			token = strings.TrimSpace(strings.TrimSuffix(token, s))
			break
		}
	}
	if len(token) != 2 || !isDigits(token) {
		return 0, false
	}
	t := ToothNumber(int(token[0]-'0')*10 + int(token[1]-'0'))
	if !t.Valid() {
		return 0, false
	}
	return t, true
}

// splitToothPrefix separates a leading tooth identifier from the rest of a
// bleeding token: "16番近心頬側" -> ("16番", "近心頬側"). The whole leading digit
// run is taken so that "316" is never read as tooth 31.
func splitToothPrefix(token string) (tooth, rest string) {
	j := 0
	for j < len(token) && token[j] >= '0' && token[j] <= '9' {
		j++
	}
	if j == 0 {
		return "", token
	}
	rest = token[j:]
	trimmed := strings.TrimLeft(rest, " ")
	for _, s := range toothSuffixes {
		if strings.HasPrefix(trimmed, s) {
			return token[:j] + s, trimmed[len(s):]
		}
	}
	return token[:j], rest
}

// Position qualifiers. A probing position needs one entry from each axis.
var (
	mesialQualifiers  = []string{"近心", "きんしん", "mesial", "mesio"}
	centralQualifiers = []string{"中央", "ちゅうおう", "central", "mid"}
	distalQualifiers  = []string{"遠心", "えんしん", "distal", "disto"}

	buccalQualifiers  = []string{"頬側", "きょうそく", "唇側", "しんそく", "buccal", "labial", "facial"}
	lingualQualifiers = []string{"舌側", "ぜっそく", "口蓋側", "こうがいそく", "lingual", "palatal"}
)

type positionAxis int

const (
	axisMesial positionAxis = iota
	axisCentral
	axisDistal
)

var positionTable = map[positionAxis][2]ProbingPosition{
	axisMesial:  {PositionMesioBuccal, PositionMesioLingual},
	axisCentral: {PositionBuccal, PositionLingual},
	axisDistal:  {PositionDistoBuccal, PositionDistoLingual},
}

// DetectPosition recognises a six-point probing position in token. Both an
// anterior/posterior qualifier (近心/中央/遠心) and a surface qualifier
// (頬側/舌側) must appear, in either order.
func DetectPosition(token string) (ProbingPosition, bool) {
	token = foldText(token)

	var axis positionAxis
	switch {
	case containsAny(token, mesialQualifiers):
		axis = axisMesial
	case containsAny(token, centralQualifiers):
		axis = axisCentral
	case containsAny(token, distalQualifiers):
		axis = axisDistal
	default:
		return PositionNone, false
	}

	switch {
	case containsAny(token, buccalQualifiers):
		return positionTable[axis][0], true
	case containsAny(token, lingualQualifiers):
		return positionTable[axis][1], true
	}
	return PositionNone, false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
