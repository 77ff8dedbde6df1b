// Package signal provides the excitation waveforms and their sampling.
package signal

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

// StreamExcitation is the waveform driven through the live link:
// 8cos(2π·20t) + 3sin(2π·80t) - 5.
func StreamExcitation(t float64) float64 {
	return 8*math.Cos(2*math.Pi*20*t) + 3*math.Sin(2*math.Pi*80*t) - 5
}

// AnalysisExcitation is the richer waveform used for offline cost analysis.
func AnalysisExcitation(t float64) float64 {
	return -1 +
		15*Sawtooth(2*math.Pi*25*t) +
		3*math.Cos(2*math.Pi*50*t) +
		18*math.Sin(2*math.Pi*30*t+math.Cos(2*math.Pi*30*t))
}

// Sawtooth is a 2π-periodic ramp rising from -1 to 1.
func Sawtooth(x float64) float64 {
	phase := math.Mod(x, 2*math.Pi)
	if phase < 0 {
		phase += 2 * math.Pi
	}
	return phase/math.Pi - 1
}

// Tone is one sinusoidal component.
type Tone struct {
	Amplitude float64
	Frequency float64 // Hz
	Phase     float64 // radians
}

// Tones returns offset + Σ A·sin(2πft + φ).
func Tones(offset float64, tones ...Tone) types.SignalFunc {
	cp := append([]Tone(nil), tones...)
	return func(t float64) float64 {
		v := offset
		for _, tn := range cp {
			v += tn.Amplitude * math.Sin(2*math.Pi*tn.Frequency*t+tn.Phase)
		}
		return v
	}
}

// Silence is the zero signal.
func Silence(float64) float64 { return 0 }

var named = map[string]types.SignalFunc{
	"stream":   StreamExcitation,
	"analysis": AnalysisExcitation,
	"silence":  Silence,
}

// ByName resolves a built-in waveform.
func ByName(name string) (types.SignalFunc, error) {
	fn, ok := named[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, types.InvalidConfig("unknown signal %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return fn, nil
}

// Names lists the built-in waveforms.
func Names() []string {
	out := make([]string, 0, len(named))
	for k := range named {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Times returns the instants start, start+ts, ... strictly before stop.
func Times(start, stop, ts time.Duration) ([]float64, error) {
	if ts <= 0 {
		return nil, types.InvalidConfig("sampling interval must be positive, got %s", ts)
	}
	if stop <= start {
		return nil, types.InvalidConfig("stop %s must be after start %s", stop, start)
	}
	n := int((stop - start) / ts)
	if (stop-start)%ts != 0 {
		n++
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = start.Seconds() + float64(i)*ts.Seconds()
	}
	return out, nil
}

// Sample evaluates fn at every instant of Times.
func Sample(fn types.SignalFunc, start, stop, ts time.Duration) ([]float64, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil signal", types.ErrInvalidConfiguration)
	}
	times, err := Times(start, stop, ts)
	if err != nil {
		return nil, err
	}
	return Evaluate(fn, times), nil
}

// Evaluate applies fn to each instant.
func Evaluate(fn types.SignalFunc, times []float64) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = fn(t)
	}
	return out
}
