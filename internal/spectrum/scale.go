// SPDX-License-Identifier: MIT
package spectrum

import "math"

// floorDecibels is the level assigned to a raw value of zero.
const floorDecibels = -100

// RawToDecibels maps a byte-quantised magnitude (0-255) onto decibels.
// A raw value of 256 lands exactly on 0 dB.
func RawToDecibels(raw float64) float64 {
	return floorDecibels * (1 - raw/256)
}

// DecibelsToMagnitude converts decibels to linear amplitude.
func DecibelsToMagnitude(db float64) float64 {
	return math.Pow(10, db/20)
}

// Percent maps v linearly from [lo, hi] to [0, 1], clamping outside the range.
func Percent(v, lo, hi float64) float64 {
	if hi <= lo {
		if v >= hi {
			return 1
		}
		return 0
	}
	p := (v - lo) / (hi - lo)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Scale converts one raw sample into a 0-1 display value. With normalize
// unset the decibel value is mapped across [-100, maxDecibels]; otherwise the
// mapping happens in linear magnitude between the two decibel bounds.
func Scale(raw, minDecibels, maxDecibels float64, normalize bool) float64 {
	return NewScaler(minDecibels, maxDecibels, normalize).Scale(raw)
}

// Scaler is Scale with the bound conversions done once.
type Scaler struct {
	normalize bool
	lo, hi    float64
}

func NewScaler(minDecibels, maxDecibels float64, normalize bool) Scaler {
	if normalize {
		return Scaler{
			normalize: true,
			lo:        DecibelsToMagnitude(minDecibels),
			hi:        DecibelsToMagnitude(maxDecibels),
		}
	}
	return Scaler{lo: floorDecibels, hi: maxDecibels}
}

func (s Scaler) Scale(raw float64) float64 {
	db := RawToDecibels(raw)
	if s.normalize {
		return Percent(DecibelsToMagnitude(db), s.lo, s.hi)
	}
	return Percent(db, s.lo, s.hi)
}
