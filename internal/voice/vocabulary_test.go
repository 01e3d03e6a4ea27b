package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectModeSwitch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		transcript string
		want       InputMode
		ok         bool
	}{
		{"ポケット 3 4 3", ModePocketDepth, true},
		{"Pocket depth please", ModePocketDepth, true},
		{"PPD", ModePocketDepth, true},
		{"BOP 31", ModeBleeding, true},
		{"bleeding on 16", ModeBleeding, true},
		{"出血 16番", ModeBleeding, true},
		{"動揺度 16 2", ModeMobility, true},
		{"Mobility", ModeMobility, true},
		{"ﾎﾟｹｯﾄ", ModePocketDepth, true}, // half-width katakana
		{"3 4 3", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := DetectModeSwitch(tc.transcript)
		assert.Equal(t, tc.ok, ok, "DetectModeSwitch(%q)", tc.transcript)
		assert.Equal(t, tc.want, got, "DetectModeSwitch(%q)", tc.transcript)
	}
}

func TestDetectModeSwitch_Priority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		transcript string
		want       InputMode
	}{
		{"BOP then pocket", ModePocketDepth},
		{"mobility and bleeding", ModeBleeding},
		{"動揺度 ポケット", ModePocketDepth},
		{"mobility BOP pocket", ModePocketDepth},
	}
	for _, tc := range tests {
		got, ok := DetectModeSwitch(tc.transcript)
		assert.True(t, ok)
		assert.Equal(t, tc.want, got, "DetectModeSwitch(%q)", tc.transcript)
	}
}

func TestVocabulary_Merge(t *testing.T) {
	t.Parallel()

	base := DefaultVocabulary()
	merged := base.Merge(map[InputMode][]string{
		ModeBleeding: {"Hemorrhage", "bop", ""},
		"unknown":    {"ignored"},
	})

	got, ok := merged.DetectModeSwitch("hemorrhage 16")
	assert.True(t, ok)
	assert.Equal(t, ModeBleeding, got)

	_, ok = base.DetectModeSwitch("hemorrhage 16")
	assert.False(t, ok, "base vocabulary must not change")

	assert.Len(t, merged.Triggers(ModeBleeding), len(base.Triggers(ModeBleeding))+1)
	_, ok = merged.DetectModeSwitch("ignored")
	assert.False(t, ok)
}

func TestVocabulary_StripLongestFirst(t *testing.T) {
	t.Parallel()

	v := DefaultVocabulary()
	assert.Equal(t, "16 2", v.strip(foldText("動揺度 16 2")))
	assert.Equal(t, "3,4", v.strip(foldText("ポケット3,4")))
}
