package voice

import (
	"log/slog"
)

// DefaultConfidence is the utterance confidence assumed when the ASR engine
// does not report one.
const DefaultConfidence = 0.85

// Option configures a [Parser].
type Option func(*Parser)

// WithVocabulary replaces the trigger vocabulary. A nil vocabulary is ignored.
func WithVocabulary(v *Vocabulary) Option {
	return func(p *Parser) {
		if v != nil {
			p.vocab = v
		}
	}
}

// WithThresholds sets the repetition disambiguator cut-offs.
func WithThresholds(th Thresholds) Option {
	return func(p *Parser) {
		p.thresholds = th
	}
}

// WithMinConfidence enables the confidence filter: values below threshold
// are dropped from [Parser.Parse] results. Zero (the default) disables it.
func WithMinConfidence(threshold float64) Option {
	return func(p *Parser) {
		p.minConfidence = threshold
	}
}

// WithLogger sets the logger used for Debug-level tracing of tokenization
// and disambiguation decisions. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// Parser turns utterances into periodontal measurements. It is immutable
// after construction and safe for concurrent use.
type Parser struct {
	vocab         *Vocabulary
	thresholds    Thresholds
	minConfidence float64
	logger        *slog.Logger
}

var defaultParser = New()

// New returns a Parser with the default vocabulary and thresholds.
func New(opts ...Option) *Parser {
	p := &Parser{
		vocab:      DefaultVocabulary(),
		thresholds: DefaultThresholds(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Vocabulary returns the parser's trigger vocabulary.
func (p *Parser) Vocabulary() *Vocabulary { return p.vocab }

// Thresholds returns the parser's disambiguator thresholds.
func (p *Parser) Thresholds() Thresholds { return p.thresholds }

// DetectModeSwitch reports the mode announced in transcript, if any, using
// the default vocabulary.
func DetectModeSwitch(transcript string) (InputMode, bool) {
	return defaultParser.vocab.DetectModeSwitch(transcript)
}

// ParseVoiceRecognition parses one utterance with the default parser.
// Callers without an ASR confidence should pass [DefaultConfidence].
func ParseVoiceRecognition(transcript string, currentMode InputMode, confidence float64) ParsedVoiceData {
	return defaultParser.Parse(transcript, currentMode, confidence)
}

// Parse parses one utterance.
//
// A mode trigger in transcript overrides currentMode; otherwise currentMode
// stays in effect. An invalid currentMode with no trigger falls back to pocket
// depth. The returned Mode is what the caller should pass on the next call.
func (p *Parser) Parse(transcript string, currentMode InputMode, confidence float64) ParsedVoiceData {
	folded := foldText(transcript)

	mode := currentMode
	if !mode.IsValid() {
		mode = ModePocketDepth
	}
	result := ParsedVoiceData{RawText: transcript}
	if detected, ok := p.vocab.detect(folded); ok {
		if detected != currentMode {
			result.DetectedModeSwitch = detected
		}
		mode = detected
	}
	result.Mode = mode

	text := p.vocab.strip(folded)
	switch mode {
	case ModeBleeding:
		result.Values = p.parseBleeding(text, confidence)
	case ModeMobility:
		result.Values = p.parseMobility(text, confidence)
	default:
		result.Values = p.parsePocketDepth(text, confidence)
	}

	if p.minConfidence > 0 {
		result.Values = Filter(result.Values, p.minConfidence)
	}

	p.logger.Debug("parsed utterance",
		slog.String("mode", string(result.Mode)),
		slog.String("switch", string(result.DetectedModeSwitch)),
		slog.Int("values", len(result.Values)),
	)
	return result
}
