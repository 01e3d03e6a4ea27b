package voice

import (
	"log/slog"
	"strings"
)

const maxMobilityGrade = 3

// degreeSuffixes may follow a mobility grade ("2度", "2°").
var degreeSuffixes = []string{"度", "°"}

// ParseMobility extracts tooth mobility grades from transcript using the
// default vocabulary.
func ParseMobility(transcript string, confidence float64) []ParsedValue {
	return defaultParser.ParseMobility(transcript, confidence)
}

// ParseMobility reads transcript as (tooth, grade) pairs: "16 2 36 1".
// Grades must be 0–3. A pair that fails either check is dropped and the walk
// still moves on by two tokens; there is no resynchronisation.
func (p *Parser) ParseMobility(transcript string, confidence float64) []ParsedValue {
	return p.parseMobility(p.vocab.strip(foldText(transcript)), confidence)
}

func (p *Parser) parseMobility(text string, confidence float64) []ParsedValue {
	values := []ParsedValue{}
	tokens := splitDelimited(text)
	for i := 0; i+1 < len(tokens); i += 2 {
		toothTok, gradeTok := tokens[i], tokens[i+1]
		tooth, ok := ParseToothNumber(toothTok)
		if !ok {
			p.logger.Debug("mobility pair dropped: tooth", slog.String("tooth", toothTok), slog.String("grade", gradeTok))
			continue
		}
		grade, ok := Normalize(trimDegree(gradeTok))
		if !ok || grade < 0 || grade > maxMobilityGrade {
			p.logger.Debug("mobility pair dropped: grade", slog.String("tooth", toothTok), slog.String("grade", gradeTok))
			continue
		}
		values = append(values, ParsedValue{
			Tooth:      tooth,
			Value:      IntValue(grade),
			Confidence: confidence,
			RawToken:   toothTok + " " + gradeTok,
		})
	}
	return values
}

func trimDegree(tok string) string {
	for _, s := range degreeSuffixes {
		if strings.HasSuffix(tok, s) {
			return strings.TrimSuffix(tok, s)
		}
	}
	return tok
}
