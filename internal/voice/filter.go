package voice

import "github.com/samber/lo"

// Filter returns the values whose confidence is at least threshold, in their
// original order. values is not modified.
func Filter(values []ParsedValue, threshold float64) []ParsedValue {
	return lo.Filter(values, func(v ParsedValue, _ int) bool {
		return v.Confidence >= threshold
	})
}
