// Package voice turns live speech-recognition transcripts into periodontal
// chart measurements.
//
// A dictation session threads an [InputMode] between calls. Each call hands
// the parser one utterance and the ASR confidence reported for it; the parser
// detects spoken mode switches ("ポケット", "BOP", "動揺度", ...), dispatches to
// the pocket-depth, bleeding-on-probing or mobility parser, and returns a
// [ParsedVoiceData]. Unrecognised input never produces an error: it simply
// contributes no values.
//
// The package holds no mutable state. A [Parser] is immutable after [New] and
// safe for concurrent use; the caller owns the current mode.
package voice

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// InputMode selects which clinical measurement is being dictated.
type InputMode string

const (
	ModePocketDepth InputMode = "pocket_depth"
	ModeBleeding    InputMode = "bleeding"
	ModeMobility    InputMode = "mobility"
)

// modePriority is the order in which trigger vocabularies are consulted.
var modePriority = []InputMode{ModePocketDepth, ModeBleeding, ModeMobility}

// IsValid reports whether m is a recognised input mode.
func (m InputMode) IsValid() bool {
	switch m {
	case ModePocketDepth, ModeBleeding, ModeMobility:
		return true
	}
	return false
}

// ToothNumber is an FDI two-digit tooth number: quadrant 1–4 followed by
// position 1–8. The zero value means no tooth.
type ToothNumber int

// Valid reports whether t satisfies the FDI quadrant grammar.
func (t ToothNumber) Valid() bool {
	q, p := int(t)/10, int(t)%10
	return q >= 1 && q <= 4 && p >= 1 && p <= 8
}

// Quadrant returns the first FDI digit.
func (t ToothNumber) Quadrant() int { return int(t) / 10 }

// Position returns the second FDI digit.
func (t ToothNumber) Position() int { return int(t) % 10 }

func (t ToothNumber) String() string { return strconv.Itoa(int(t)) }

// ProbingPosition is one of the six probing sites around a tooth. The zero
// value means no position was dictated (1-point protocol).
type ProbingPosition int

const (
	PositionNone ProbingPosition = iota
	PositionMesioBuccal
	PositionBuccal
	PositionDistoBuccal
	PositionMesioLingual
	PositionLingual
	PositionDistoLingual
)

var positionNames = map[ProbingPosition]string{
	PositionMesioBuccal:  "mesio_buccal",
	PositionBuccal:       "buccal",
	PositionDistoBuccal:  "disto_buccal",
	PositionMesioLingual: "mesio_lingual",
	PositionLingual:      "lingual",
	PositionDistoLingual: "disto_lingual",
}

func (p ProbingPosition) String() string {
	if name, ok := positionNames[p]; ok {
		return name
	}
	return ""
}

// MarshalText implements encoding.TextMarshaler.
func (p ProbingPosition) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *ProbingPosition) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*p = PositionNone
		return nil
	}
	for pos, name := range positionNames {
		if name == string(b) {
			*p = pos
			return nil
		}
	}
	return fmt.Errorf("voice: unknown probing position %q", b)
}

// Value is a single measurement: an integer (pocket depth, mobility grade) or
// a boolean (bleeding on probing).
type Value struct {
	n      int
	b      bool
	isBool bool
}

// IntValue returns an integer measurement.
func IntValue(n int) Value { return Value{n: n} }

// BoolValue returns a boolean measurement.
func BoolValue(b bool) Value { return Value{b: b, isBool: true} }

// Int returns the integer measurement and whether v holds one.
func (v Value) Int() (int, bool) { return v.n, !v.isBool }

// Bool returns the boolean measurement and whether v holds one.
func (v Value) Bool() (bool, bool) { return v.b, v.isBool }

func (v Value) String() string {
	if v.isBool {
		return strconv.FormatBool(v.b)
	}
	return strconv.Itoa(v.n)
}

// MarshalJSON encodes v as a bare JSON number or boolean.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isBool {
		return json.Marshal(v.b)
	}
	return json.Marshal(v.n)
}

// UnmarshalJSON accepts a JSON number or boolean.
func (v *Value) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = BoolValue(b)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("voice: value must be a number or boolean: %w", err)
	}
	*v = IntValue(n)
	return nil
}

// ParsedValue is one measurement extracted from a transcript.
type ParsedValue struct {
	// Tooth is zero for pocket-depth readings, which are positional only.
	Tooth    ToothNumber     `json:"tooth_number,omitempty"`
	Position ProbingPosition `json:"position,omitempty"`
	Value    Value           `json:"value"`

	// Confidence is the ASR confidence of the whole utterance.
	Confidence float64 `json:"confidence"`

	// RawToken is the text (or a description of the expansion) that produced
	// this value.
	RawToken string `json:"raw_token"`
}

// ParsedVoiceData is the result of parsing one utterance.
type ParsedVoiceData struct {
	// Mode is the mode in effect after this utterance.
	Mode InputMode `json:"mode"`

	// Values are ordered as encountered. For pocket depth the order is the
	// probing-site sequence. Never nil.
	Values []ParsedValue `json:"values"`

	RawText string `json:"raw_text"`

	// DetectedModeSwitch is set only when the utterance switched to a mode
	// other than the one passed in.
	DetectedModeSwitch InputMode `json:"detected_mode_switch,omitempty"`
}
