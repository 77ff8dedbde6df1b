package costmodel_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/costmodel"
	"github.com/joeydtaylor/sparsewave/pkg/internal/signal"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

func analysisSamples(t *testing.T) []float64 {
	t.Helper()
	samples, err := signal.Sample(signal.AnalysisExcitation, 0, 500*time.Millisecond, time.Millisecond)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	return samples
}

func TestCompute_WorkedExample(t *testing.T) {
	st := costmodel.Compute(0.1, 30, 10, 640, types.DefaultSizeModel())
	if st.EstimatedBytes != 400 {
		t.Fatalf("expected 400 compressed bytes, got %d", st.EstimatedBytes)
	}
	if st.UncompressedBytes != 5120 {
		t.Fatalf("expected 5120 uncompressed bytes, got %d", st.UncompressedBytes)
	}
	if math.Abs(st.RatioPercent-92.1875) > 1e-9 {
		t.Fatalf("expected 92.1875%%, got %v", st.RatioPercent)
	}
}

func TestEstimate_RejectsThresholdOutsideUnitInterval(t *testing.T) {
	m := types.NormalizedMagnitudeMatrix{{1, 0.5}}
	for _, th := range []float64{-0.01, 1.01, math.NaN()} {
		if _, err := costmodel.Estimate(m, th, 2, types.DefaultSizeModel()); !errors.Is(err, types.ErrInvalidConfiguration) {
			t.Fatalf("threshold %v: expected ErrInvalidConfiguration, got %v", th, err)
		}
	}
}

func TestEstimate_SkipsSilentRows(t *testing.T) {
	m := types.NormalizedMagnitudeMatrix{{1, 0.5, 0}, {0, 0, 0}}
	st, err := costmodel.Estimate(m, 0, 8, types.DefaultSizeModel())
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if st.NonZeroBinCount != 3 {
		t.Fatalf("expected 3 retained bins, got %d", st.NonZeroBinCount)
	}
	if st.EstimatedBytes != 3*12+2*4 {
		t.Fatalf("unexpected estimate %d", st.EstimatedBytes)
	}
}

func TestAnalysis_RatioIsMonotonic(t *testing.T) {
	a, err := costmodel.New(analysisSamples(t), 64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Windows() != 7 || len(a.Samples()) != 448 {
		t.Fatalf("expected 7 windows / 448 samples, got %d / %d", a.Windows(), len(a.Samples()))
	}

	sweep, err := a.Sweep(costmodel.Steps(200))
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if sweep[0].NonZeroBinCount != 7*33 {
		t.Fatalf("threshold 0 should retain every bin, got %d", sweep[0].NonZeroBinCount)
	}
	if last := sweep[len(sweep)-1]; last.NonZeroBinCount < 7 {
		t.Fatalf("threshold 1 should retain at least one bin per window, got %d", last.NonZeroBinCount)
	}
	for i := 1; i < len(sweep); i++ {
		if sweep[i].RatioPercent < sweep[i-1].RatioPercent {
			t.Fatalf("ratio decreased from %v (th=%v) to %v (th=%v)",
				sweep[i-1].RatioPercent, sweep[i-1].Threshold, sweep[i].RatioPercent, sweep[i].Threshold)
		}
	}
}

func TestAnalysis_ReconstructBoundaries(t *testing.T) {
	a, _ := costmodel.New(analysisSamples(t), 64)

	exact, err := a.Reconstruct(0)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	e0, _ := a.Error(exact)
	if e0.MaxAbs > 1e-9 {
		t.Fatalf("threshold 0 should be lossless, max error %v", e0.MaxAbs)
	}

	lossy, _ := a.Reconstruct(0.5)
	e5, _ := a.Error(lossy)
	if e5.RMSE <= e0.RMSE || e5.SNRDecib <= 0 {
		t.Fatalf("expected a lossy but recognisable reconstruction, got %+v", e5)
	}

	if _, err := a.Reconstruct(2); !errors.Is(err, types.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestNew_NeedsOneWholeWindow(t *testing.T) {
	if _, err := costmodel.New(make([]float64, 63), 64); !errors.Is(err, types.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	e, err := costmodel.Compare([]float64{1, 2}, []float64{1, 2})
	if err != nil || !e.Exact || e.RMSE != 0 {
		t.Fatalf("identical signals: %+v (%v)", e, err)
	}
	e, _ = costmodel.Compare([]float64{3, 4}, []float64{3, 3})
	if math.Abs(e.RMSE-math.Sqrt(0.5)) > 1e-12 || e.MaxAbs != 1 {
		t.Fatalf("unexpected error metrics %+v", e)
	}
	if _, err := costmodel.Compare([]float64{1}, nil); err == nil {
		t.Fatalf("expected length mismatch error")
	}
}

func TestBaselines(t *testing.T) {
	a, _ := costmodel.New(analysisSamples(t), 64)
	res, err := a.Baselines()
	if err != nil {
		t.Fatalf("Baselines: %v", err)
	}
	if len(res) != len(costmodel.Codecs) {
		t.Fatalf("expected %d results, got %d", len(costmodel.Codecs), len(res))
	}
	for i, r := range res {
		if r.Bytes <= 0 {
			t.Fatalf("%s produced no output", r.Codec)
		}
		if i > 0 && res[i-1].Bytes > r.Bytes {
			t.Fatalf("results not ordered by size: %+v", res)
		}
	}
	if _, err := a.Baselines("rar"); !errors.Is(err, types.ErrInvalidConfiguration) {
		t.Fatalf("expected unknown codec error, got %v", err)
	}
}
