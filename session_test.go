package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"perio_dictation/internal/voice"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	m, err := NewMetrics(noop.NewMeterProvider())
	require.NoError(t, err)
	return m
}

func defaultProfile(t *testing.T) *ClinicProfile {
	t.Helper()
	cp, err := NewClinicProfile(nil, "", voice.DefaultThresholds(), nil)
	require.NoError(t, err)
	return cp
}

func TestSession_ModeCarriesAcrossUtterances(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(time.Hour, newTestMetrics(t))
	s := store.Create(context.Background(), "", voice.ModeBleeding)
	profile := defaultProfile(t)
	now := time.Now()

	got := s.Apply(profile, "31, 34", 0.9, now)
	assert.Equal(t, voice.ModeBleeding, got.Mode)
	assert.Len(t, got.Values, 2)

	got = s.Apply(profile, "ポケット 3 3 2", 0.9, now)
	assert.Equal(t, voice.ModePocketDepth, got.Mode)
	assert.Equal(t, voice.ModePocketDepth, got.DetectedModeSwitch)

	got = s.Apply(profile, "4 4 3", 0.9, now)
	assert.Equal(t, voice.ModePocketDepth, got.Mode)
	assert.Empty(t, got.DetectedModeSwitch)
	assert.Len(t, got.Values, 3)

	info := s.Info()
	assert.Equal(t, voice.ModePocketDepth, info.Mode)
	assert.Equal(t, 3, info.Utterances)
}

func TestSessionStore_CreateGetDelete(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(0, nil)
	ctx := context.Background()

	s := store.Create(ctx, "sakura", "plaque")
	assert.Equal(t, voice.ModePocketDepth, s.Info().Mode)
	assert.Equal(t, "sakura", s.Info().Clinic)
	assert.NotEmpty(t, s.Info().ID)
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(s.Info().ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, store.Delete(ctx, s.Info().ID))
	assert.Zero(t, store.Len())
	assert.ErrorIs(t, store.Delete(ctx, s.Info().ID), errSessionNotFound)

	_, err = store.Get(s.Info().ID)
	assert.ErrorIs(t, err, errSessionNotFound)
}

func TestSessionStore_Sweep(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	now := start
	store := NewSessionStore(10*time.Minute, newTestMetrics(t))
	store.now = func() time.Time { return now }
	ctx := context.Background()

	idle := store.Create(ctx, "", voice.ModePocketDepth)
	busy := store.Create(ctx, "", voice.ModePocketDepth)

	now = start.Add(8 * time.Minute)
	busy.Apply(defaultProfile(t), "3 2 3", 0.9, now)

	now = start.Add(15 * time.Minute)
	assert.Equal(t, 1, store.Sweep(ctx))

	_, err := store.Get(idle.Info().ID)
	assert.ErrorIs(t, err, errSessionNotFound)
	_, err = store.Get(busy.Info().ID)
	assert.NoError(t, err)
}

func TestSessionStore_SweepDisabled(t *testing.T) {
	t.Parallel()

	store := NewSessionStore(0, nil)
	store.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	store.Create(context.Background(), "", voice.ModeMobility)

	assert.Zero(t, store.Sweep(context.Background()))
	assert.Equal(t, 1, store.Len())
}
