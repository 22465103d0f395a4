// SPDX-License-Identifier: MIT
/*
Package spectrum reduces a raw frequency-magnitude frame into a fixed number
of smoothed display values in [0, 1].

Per frame: the configured frequency band selects a bin range, the range is
resampled to the output size, every value is scaled from raw units to 0-1,
and the result is blended with the previous frame.

Thread Safety:
- A Reducer is not safe for concurrent use
- Reconfigure and ProcessFrame must be serialised by the caller
- The frame returned by ProcessFrame is reused by the next call
*/
package spectrum

import (
	applog "spectra/internal/log"
)

// Reducer owns the derived bin range and the two frame buffers.
type Reducer struct {
	cfg    Config
	rng    BinRange
	scaler Scaler

	current  []float64 // this frame, handed back to the caller
	previous []float64 // smoothing memory
}

// New validates cfg and allocates buffers for its output size.
func New(cfg Config) (*Reducer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Reducer{cfg: cfg}
	r.recompute()
	r.scaler = NewScaler(cfg.MinDecibels, cfg.MaxDecibels, cfg.Normalize)

	applog.Debugf("Spectrum: Reducer created (bins %d-%d, output %d)", r.rng.Min, r.rng.Max, len(r.current))
	return r, nil
}

// Reconfigure merges opts into the current configuration. The merged
// snapshot is validated before anything changes; on error the reducer keeps
// its previous configuration. The result reports whether the bin range or
// output size inputs changed, in which case derived state is rebuilt.
func (r *Reducer) Reconfigure(opts ...Option) (bool, error) {
	next := r.cfg
	for _, opt := range opts {
		opt(&next)
	}
	return r.Replace(next)
}

// Replace swaps in a whole new configuration with the same rules as
// Reconfigure.
func (r *Reducer) Replace(next Config) (bool, error) {
	if err := next.Validate(); err != nil {
		return false, err
	}

	changed := r.cfg.affectsRange(next)
	r.cfg = next
	r.scaler = NewScaler(next.MinDecibels, next.MaxDecibels, next.Normalize)

	if changed {
		r.recompute()
		applog.Debugf("Spectrum: Reconfigured (bins %d-%d, output %d)", r.rng.Min, r.rng.Max, len(r.current))
	}
	return changed, nil
}

// recompute derives the bin range and resizes both buffers together when
// the output size moves. Smoothing memory is dropped on resize.
func (r *Reducer) recompute() {
	r.rng = MapRange(r.cfg.FFTSize, r.cfg.SampleRate, r.cfg.MinFrequency, r.cfg.MaxFrequency)

	size := r.rng.OutputSize(r.cfg.OutputBins)
	if r.current == nil || len(r.current) != size {
		r.current = make([]float64, size)
		r.previous = make([]float64, size)
	}
}

// ProcessFrame reduces one raw frame (values nominally 0-255) and returns the
// reducer's frame buffer. The slice stays valid until the next call; copy it
// to keep it longer.
//
// A raw frame shorter than the upper bin bound yields an *IndexError and
// leaves both buffers untouched.
func (r *Reducer) ProcessFrame(raw []float64) ([]float64, error) {
	if len(r.current) == 0 {
		return r.current, nil
	}
	if len(raw) < r.rng.Max {
		return nil, &IndexError{Need: r.rng.Max, Have: len(raw)}
	}

	Resample(r.current, raw, r.rng, r.scaler)
	Smooth(r.current, r.previous, r.cfg.SmoothingTimeConstant)

	return r.current, nil
}

// Config returns the configuration snapshot in force.
func (r *Reducer) Config() Config { return r.cfg }

// Range returns the derived bin range.
func (r *Reducer) Range() BinRange { return r.rng }

// OutputSize is the length of every frame ProcessFrame returns.
func (r *Reducer) OutputSize() int { return len(r.current) }

// Mode reports the resampling policy the next frame will use.
func (r *Reducer) Mode() ResampleMode { return ModeFor(r.rng.Count, len(r.current)) }
