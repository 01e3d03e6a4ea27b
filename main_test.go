package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perio_dictation/internal/voice"
)

func runParseCmd(t *testing.T, args ...string) (ParseResponse, error) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "sakura.yaml", "mobility: ぐらつき\n")
	cfg := writeFile(t, dir, "config.yaml", fmt.Sprintf("vocabulary:\n  dir: %q\nlog:\n  level: error\n", dir))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", cfg, "parse"}, args...))

	var resp ParseResponse
	if err := cmd.Execute(); err != nil {
		return resp, err
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp), out.String())
	return resp, nil
}

func TestParseCommand(t *testing.T) {
	got, err := runParseCmd(t, "--mode", "bleeding", "16番近心頬側, 31")
	require.NoError(t, err)

	assert.Equal(t, voice.ModeBleeding, got.Mode)
	require.Len(t, got.Values, 2)
	assert.Equal(t, voice.ToothNumber(16), got.Values[0].Tooth)
	assert.Equal(t, voice.PositionMesioBuccal, got.Values[0].Position)
	assert.Equal(t, voice.DefaultConfidence, got.Values[0].Confidence)
}

func TestParseCommand_Clinic(t *testing.T) {
	got, err := runParseCmd(t, "--clinic", "sakura", "--confidence", "0.7", "ぐらつき 46 3")
	require.NoError(t, err)

	assert.Equal(t, "sakura", got.Clinic)
	assert.Equal(t, voice.ModeMobility, got.Mode)
	assert.Equal(t, voice.ModeMobility, got.DetectedModeSwitch)
	require.Len(t, got.Values, 1)
	assert.Equal(t, voice.IntValue(3), got.Values[0].Value)
	assert.Equal(t, 0.7, got.Values[0].Confidence)
}

func TestParseCommand_Errors(t *testing.T) {
	_, err := runParseCmd(t, "--mode", "plaque", "3")
	assert.Error(t, err)

	_, err = runParseCmd(t, "--confidence", "2", "3")
	assert.Error(t, err)

	_, err = runParseCmd(t, "--clinic", "kaede", "3")
	assert.ErrorIs(t, err, errClinicNotFound)
}
