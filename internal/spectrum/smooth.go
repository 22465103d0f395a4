// SPDX-License-Identifier: MIT
package spectrum

// Smooth applies a single-pole low-pass between frames, in place:
//
//	cur[k] = prev[k]*alpha + cur[k]*(1-alpha)
//
// Blending is skipped for alpha <= 0. prev always ends up holding the final
// cur values, so enabling smoothing later starts from the last real frame.
// Both slices must have the same length.
func Smooth(cur, prev []float64, alpha float64) {
	if alpha > 0 {
		beta := 1 - alpha
		for k, v := range cur {
			cur[k] = prev[k]*alpha + v*beta
		}
	}
	copy(prev, cur)
}
