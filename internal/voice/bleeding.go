package voice

import (
	"log/slog"
	"strings"
)

// ParseBleeding extracts bleeding-on-probing sites from transcript using the
// default vocabulary.
func ParseBleeding(transcript string, confidence float64) []ParsedValue {
	return defaultParser.ParseBleeding(transcript, confidence)
}

// ParseBleeding extracts bleeding-on-probing sites. The transcript is split on
// commas; each piece must start with a tooth number ("31", "16番") and may go
// on to name a probing position ("16番近心頬側"). Pieces without a valid tooth,
// or with anything after the tooth other than a position, are skipped. Every
// site found is reported with Value true.
func (p *Parser) ParseBleeding(transcript string, confidence float64) []ParsedValue {
	return p.parseBleeding(p.vocab.strip(foldText(transcript)), confidence)
}

func (p *Parser) parseBleeding(text string, confidence float64) []ParsedValue {
	values := []ParsedValue{}
	for _, tok := range splitCommas(text) {
		toothPart, rest := splitToothPrefix(tok)
		tooth, ok := ParseToothNumber(toothPart)
		if !ok {
			p.logger.Debug("bleeding token without tooth", slog.String("token", tok))
			continue
		}
		pos, ok := DetectPosition(rest)
		if !ok && strings.TrimSpace(rest) != "" {
			p.logger.Debug("bleeding token with unrecognised remainder", slog.String("token", tok))
			continue
		}
		values = append(values, ParsedValue{
			Tooth:      tooth,
			Position:   pos,
			Value:      BoolValue(true),
			Confidence: confidence,
			RawToken:   tok,
		})
	}
	return values
}
