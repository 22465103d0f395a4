// SPDX-License-Identifier: MIT
package spectrum

// ResampleMode identifies which policy Resample applied to a frame.
type ResampleMode int

const (
	ModeEmpty    ResampleMode = iota // empty bin range, nothing written
	ModeEqual                        // one raw bin per output slot
	ModeCompress                     // several raw bins per output slot, peak-held
	ModeExpand                       // one raw bin replicated over several slots
)

func (m ResampleMode) String() string {
	switch m {
	case ModeEmpty:
		return "empty"
	case ModeEqual:
		return "equal"
	case ModeCompress:
		return "compress"
	case ModeExpand:
		return "expand"
	default:
		return "unknown"
	}
}

// ModeFor selects the policy for mapping count raw bins onto size slots.
func ModeFor(count, size int) ResampleMode {
	switch {
	case count == 0 || size == 0:
		return ModeEmpty
	case size == count:
		return ModeEqual
	case size < count:
		return ModeCompress
	default:
		return ModeExpand
	}
}

// Resample fills dst with scaled values taken from raw over the bin range r.
// len(dst) is the output size. raw must hold at least r.Max values.
//
// Compress mode keeps the peak absolute value of each sub-range, sampling at
// a stride of step/10 raw bins. Wide sub-ranges can therefore miss a narrow
// spike between sampled indices; the stride is kept for frame-rate headroom.
func Resample(dst, raw []float64, r BinRange, s Scaler) ResampleMode {
	size := len(dst)
	mode := ModeFor(r.Count, size)

	switch mode {
	case ModeEqual:
		for k := range dst {
			dst[k] = s.Scale(raw[r.Min+k])
		}

	case ModeCompress:
		step := float64(r.Count) / float64(size)
		stride := int(step / 10)
		if stride < 1 {
			stride = 1
		}

		for k := range dst {
			start := int(float64(r.Min+k) * step)
			end := int(float64(start) + step)
			if end > len(raw) {
				end = len(raw)
			}

			peak := 0.0
			for j := start; j < end; j += stride {
				v := raw[j]
				if v > peak {
					peak = v
				} else if -v > peak {
					peak = -v
				}
			}
			dst[k] = s.Scale(peak)
		}

	case ModeExpand:
		step := float64(size) / float64(r.Count)

		for j := 0; j < r.Count; j++ {
			v := s.Scale(raw[r.Min+j])
			start := int(float64(j) * step)
			end := float64(start) + step
			for k := start; float64(k) < end && k < size; k++ {
				dst[k] = v
			}
		}
	}

	return mode
}
