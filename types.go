package main

import (
	"time"

	"perio_dictation/internal/voice"
)

// FlexibleVocabulary is a clinic vocabulary file as decoded from JSON or
// YAML. Keys are mode names (pocket_depth, bleeding, mobility, or an alias)
// mapping to a phrase or list of phrases, plus an optional "thresholds"
// object.
type FlexibleVocabulary map[string]interface{}

// ClinicProfile is one clinic's parser, built from the default vocabulary
// plus the clinic's extra trigger phrases.
type ClinicProfile struct {
	parser   *voice.Parser
	extra    map[voice.InputMode][]string
	loadedAt time.Time
	filePath string
}

// Request/Response structures
type ParseRequest struct {
	Transcript string `json:"transcript" form:"transcript" query:"transcript"`
	Mode       string `json:"mode" form:"mode" query:"mode"`
	Clinic     string `json:"clinic" form:"clinic" query:"clinic"`

	// Confidence is optional; bound from JSON only; GET requests read the
	// query parameter by hand.
	Confidence *float64 `json:"confidence"`
}

type ParseResponse struct {
	voice.ParsedVoiceData
	Clinic string `json:"clinic,omitempty"`
}

type CreateSessionRequest struct {
	Clinic string `json:"clinic"`
	Mode   string `json:"mode"`
}

type UtteranceRequest struct {
	Transcript string   `json:"transcript"`
	Confidence *float64 `json:"confidence"`
}

type UtteranceResponse struct {
	ParseResponse
	Session SessionInfo `json:"session"`
}

// SessionInfo is the externally visible state of a dictation session.
type SessionInfo struct {
	ID         string          `json:"id"`
	Clinic     string          `json:"clinic,omitempty"`
	Mode       voice.InputMode `json:"mode"`
	Utterances int             `json:"utterances"`
	CreatedAt  time.Time       `json:"created_at"`
	LastUsedAt time.Time       `json:"last_used_at"`
}

type ReloadResponse struct {
	Message    string    `json:"message"`
	Clinic     string    `json:"clinic,omitempty"`
	ReloadedAt time.Time `json:"reloaded_at"`
}
