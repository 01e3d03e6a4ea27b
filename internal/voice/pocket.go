package voice

import (
	"fmt"
	"log/slog"
)

// Legal pocket-depth range in millimetres.
const (
	minPocketDepth = 0
	maxPocketDepth = 15
)

// Thresholds are the confidence cut-offs used by the repetition
// disambiguator. They were chosen empirically and should be recalibrated
// against recorded dictation.
type Thresholds struct {
	// ElevenLiteral: a literal "11" at or above this confidence is read as
	// the number eleven and not expanded into two ones.
	ElevenLiteral float64 `json:"eleven_literal" yaml:"eleven_literal" mapstructure:"eleven_literal"`

	// DoubleRepeat: minimum confidence to expand "22", "33", ... into two
	// readings.
	DoubleRepeat float64 `json:"double_repeat" yaml:"double_repeat" mapstructure:"double_repeat"`

	// TripleRepeat: minimum confidence to expand "333" into three readings.
	TripleRepeat float64 `json:"triple_repeat" yaml:"triple_repeat" mapstructure:"triple_repeat"`
}

// DefaultThresholds returns 0.85 / 0.60 / 0.40.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ElevenLiteral: 0.85,
		DoubleRepeat:  0.60,
		TripleRepeat:  0.40,
	}
}

// repetition describes what the disambiguator did with a repeated-digit
// literal.
type repetition int

const (
	repetitionExpand repetition = iota
	repetitionEleven
	repetitionLowConfidence
	repetitionTooLong
)

func (r repetition) String() string {
	switch r {
	case repetitionExpand:
		return "expand"
	case repetitionEleven:
		return "literal_eleven"
	case repetitionLowConfidence:
		return "low_confidence"
	case repetitionTooLong:
		return "too_many_repeats"
	}
	return "unknown"
}

// disambiguate decides whether a literal made of one repeated digit is a run
// of separate single-digit readings. count is the number of digits.
func (th Thresholds) disambiguate(digit, count int, confidence float64) repetition {
	switch {
	case count == 2:
		if digit == 1 && confidence >= th.ElevenLiteral {
			return repetitionEleven
		}
		if confidence >= th.DoubleRepeat {
			return repetitionExpand
		}
		return repetitionLowConfidence
	case count == 3:
		if confidence >= th.TripleRepeat {
			return repetitionExpand
		}
		return repetitionLowConfidence
	default:
		return repetitionTooLong
	}
}

// repeatedDigit reports whether s is two or more copies of one digit.
func repeatedDigit(s string) (digit int, ok bool) {
	if len(s) < 2 || !isDigits(s) {
		return 0, false
	}
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return 0, false
		}
	}
	return int(s[0] - '0'), true
}

// ParsePocketDepth extracts the sequence of pocket depths from transcript
// using the default vocabulary and thresholds.
func ParsePocketDepth(transcript string, confidence float64) []ParsedValue {
	return defaultParser.ParsePocketDepth(transcript, confidence)
}

// ParsePocketDepth extracts the sequence of pocket depths (0–15 mm) from
// transcript.
//
// Two tokenizations are tried: compound numeral phrases and a plain split on
// commas and whitespace. The split wins only when it yields more tokens.
// Literals ASR produced by gluing several readings together are then
// unpacked:
//   - one repeated digit ("333") goes through the confidence-weighted
//     repetition table in [Thresholds]
//   - mixed digits of 16 or more ("234") split into single digits
func (p *Parser) ParsePocketDepth(transcript string, confidence float64) []ParsedValue {
	return p.parsePocketDepth(p.vocab.strip(foldText(transcript)), confidence)
}

func (p *Parser) parsePocketDepth(text string, confidence float64) []ParsedValue {
	values := []ParsedValue{}

	tokens := compoundTokens(text)
	if split := splitDelimited(text); len(split) > len(tokens) {
		tokens = split
	}
	p.logger.Debug("pocket depth tokens", slog.Any("tokens", tokens))

	emit := func(n int, raw string) {
		if n < minPocketDepth || n > maxPocketDepth {
			return
		}
		values = append(values, ParsedValue{
			Value:      IntValue(n),
			Confidence: confidence,
			RawToken:   raw,
		})
	}

	for _, tok := range tokens {
		if digit, ok := repeatedDigit(tok); ok {
			decision := p.thresholds.disambiguate(digit, len(tok), confidence)
			p.logger.Debug("repeated digit literal",
				slog.String("token", tok),
				slog.Float64("confidence", confidence),
				slog.String("decision", decision.String()),
			)
			if decision != repetitionExpand {
				continue
			}
			for i := range len(tok) {
				emit(digit, fmt.Sprintf("%s (repeat %d/%d)", tok, i+1, len(tok)))
			}
			continue
		}

		if n, ok := Normalize(tok); ok && n <= maxPocketDepth {
			emit(n, tok)
			continue
		}
		// Too large for one reading, or too long to fit an int at all.
		if !isDigits(tok) {
			continue
		}
		p.logger.Debug("splitting concatenated digits", slog.String("token", tok))
		for i := range len(tok) {
			emit(int(tok[i]-'0'), fmt.Sprintf("%s (digit %d/%d)", tok, i+1, len(tok)))
		}
	}
	return values
}
