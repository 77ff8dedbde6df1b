package types

// Sample is one time-domain value of the streamed signal.
type Sample = float64

// Window is a contiguous run of exactly N samples. Windows produced by the
// windower alias the caller's sample slice and must be treated as read-only.
type Window []float64

// SignalFunc evaluates the excitation waveform at time t (seconds).
type SignalFunc func(t float64) float64
