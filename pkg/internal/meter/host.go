package meter

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

const defaultHostInterval = 500 * time.Millisecond

// HostStats is one utilisation sample of the machine running the session.
type HostStats struct {
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	Goroutines    int       `json:"goroutines"`
	SampledAt     time.Time `json:"sampled_at"`
}

type hostSampler interface {
	Sample(window time.Duration) (HostStats, error)
}

type gopsutilSampler struct{}

// Sample averages CPU over window, blocking for that long.
func (gopsutilSampler) Sample(window time.Duration) (HostStats, error) {
	var hs HostStats
	pct, err := cpu.Percent(window, false)
	if err != nil {
		return hs, err
	}
	if len(pct) > 0 {
		hs.CPUPercent = pct[0]
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return hs, err
	}
	hs.MemoryPercent = vm.UsedPercent
	hs.Goroutines = runtime.NumGoroutine()
	hs.SampledAt = time.Now()
	return hs, nil
}

// SampleHost takes one host sample and stores it in the snapshot.
func (m *Meter) SampleHost() (HostStats, error) {
	hs, err := m.sampler.Sample(m.hostEvery)
	if err != nil {
		return hs, err
	}
	m.hostMu.Lock()
	m.host = hs
	m.hostMu.Unlock()
	return hs, nil
}
