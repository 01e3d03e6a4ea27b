package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type toothGrade struct {
	tooth ToothNumber
	grade int
}

func grades(t *testing.T, values []ParsedValue) []toothGrade {
	t.Helper()
	out := make([]toothGrade, 0, len(values))
	for _, v := range values {
		n, ok := v.Value.Int()
		assert.True(t, ok)
		assert.Equal(t, PositionNone, v.Position)
		out = append(out, toothGrade{v.Tooth, n})
	}
	return out
}

func TestParseMobility(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		transcript string
		want       []toothGrade
	}{
		{"pairs", "16 2 36 1", []toothGrade{{16, 2}, {36, 1}}},
		{"trailing unpaired", "16 2 36", []toothGrade{{16, 2}}},
		{"suffixes", "動揺度 16番 2度、36 1°", []toothGrade{{16, 2}, {36, 1}}},
		{"words", "mobility 47 one 11 zero", []toothGrade{{47, 1}, {11, 0}}},
		{"kana grade", "17 に", []toothGrade{{17, 2}}},
		{"bad tooth drops pair", "19 2 36 1", []toothGrade{{36, 1}}},
		{"grade out of range", "16 4 36 3", []toothGrade{{36, 3}}},
		{"no resync", "16 36 1", []toothGrade{}},
		{"empty", "", []toothGrade{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ParseMobility(tc.transcript, 0.9)
			assert.NotNil(t, got)
			assert.Equal(t, tc.want, grades(t, got))
		})
	}
}
