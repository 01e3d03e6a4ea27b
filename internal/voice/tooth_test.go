package voice

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseToothNumber_Grammar(t *testing.T) {
	t.Parallel()

	for d1 := 0; d1 <= 9; d1++ {
		for d2 := 0; d2 <= 9; d2++ {
			in := fmt.Sprintf("%d%d", d1, d2)
			want := d1 >= 1 && d1 <= 4 && d2 >= 1 && d2 <= 8

			got, ok := ParseToothNumber(in)
			assert.Equal(t, want, ok, "ParseToothNumber(%q)", in)
			if want {
				assert.Equal(t, ToothNumber(d1*10+d2), got)
				assert.Equal(t, d1, got.Quadrant())
				assert.Equal(t, d2, got.Position())
			}
		}
	}
}

func TestParseToothNumber_Suffix(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"16番", "16ばん", "16 番", "１６番"} {
		got, ok := ParseToothNumber(in)
		assert.True(t, ok, "ParseToothNumber(%q)", in)
		assert.Equal(t, ToothNumber(16), got)
	}

	for _, in := range []string{"1", "1番", "161", "316番", "番", "", "19番", "ab"} {
		_, ok := ParseToothNumber(in)
		assert.False(t, ok, "ParseToothNumber(%q) should fail", in)
	}
}

func TestSplitToothPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, tooth, rest string
	}{
		{"31", "31", ""},
		{"16番近心頬側", "16番", "近心頬側"},
		{"16 番 遠心舌側", "16番", " 遠心舌側"},
		{"316近心", "316", "近心"},
		{"近心", "", "近心"},
	}
	for _, tc := range tests {
		tooth, rest := splitToothPrefix(tc.in)
		assert.Equal(t, tc.tooth, tooth, "tooth of %q", tc.in)
		assert.Equal(t, tc.rest, rest, "rest of %q", tc.in)
	}
}

func TestDetectPosition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want ProbingPosition
	}{
		{"近心頬側", PositionMesioBuccal},
		{"頬側近心", PositionMesioBuccal},
		{"中央頬側", PositionBuccal},
		{"遠心頬側", PositionDistoBuccal},
		{"近心舌側", PositionMesioLingual},
		{"中央舌側", PositionLingual},
		{"遠心舌側", PositionDistoLingual},
		{"えんしんぜっそく", PositionDistoLingual},
		{"近心口蓋側", PositionMesioLingual},
		{"distal buccal", PositionDistoBuccal},
	}
	for _, tc := range tests {
		got, ok := DetectPosition(tc.in)
		assert.True(t, ok, "DetectPosition(%q)", tc.in)
		assert.Equal(t, tc.want, got, "DetectPosition(%q)", tc.in)
	}
}

func TestDetectPosition_RequiresBothAxes(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "近心", "頬側", "舌側", "遠心", "31"} {
		got, ok := DetectPosition(in)
		assert.False(t, ok, "DetectPosition(%q)", in)
		assert.Equal(t, PositionNone, got)
	}
}
