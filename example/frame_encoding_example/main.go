package main

import (
	"bytes"
	"fmt"
	"math"

	"github.com/joeydtaylor/sparsewave/pkg/builder"
)

func main() {
	const windowSize = 64

	window := make([]float64, windowSize)
	for i := range window {
		window[i] = math.Sin(2*math.Pi*4*float64(i)/windowSize) + 0.25*math.Sin(2*math.Pi*9*float64(i)/windowSize)
	}

	enc, err := builder.NewSpectralEncoder(windowSize)
	if err != nil {
		panic(err)
	}
	frame, err := enc.Encode(window, 0.1)
	if err != nil {
		panic(err)
	}
	fmt.Printf("kept %d of %d bins\n", len(frame.Bins), windowSize/2+1)

	var wire bytes.Buffer
	fw, err := builder.NewFrameEncoder(&wire, windowSize)
	if err != nil {
		panic(err)
	}
	if err := fw.WriteFrame(frame); err != nil {
		panic(err)
	}
	fmt.Printf("frame is %d bytes on the wire (raw window: %d)\n", wire.Len(), windowSize*4)

	fr, err := builder.NewFrameDecoder(&wire, windowSize)
	if err != nil {
		panic(err)
	}
	decoded, err := fr.NextFrame()
	if err != nil {
		panic(err)
	}

	synth, err := builder.NewSynthesizer(windowSize)
	if err != nil {
		panic(err)
	}
	rebuilt, err := synth.Frame(decoded)
	if err != nil {
		panic(err)
	}

	e, err := builder.CompareSignals(window, rebuilt)
	if err != nil {
		panic(err)
	}
	fmt.Printf("rmse=%.2e max=%.2e\n", e.RMSE, e.MaxAbs)
}
