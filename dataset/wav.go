package dataset

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"

	"github.com/cwbudde/fixedfir/dsp/fixed"
)

// LoadWAV reads a PCM WAV capture as a verification signal. Multi-channel
// files contribute only their first channel; samples are normalized by the
// source bit depth before requantization into the target format.
func LoadWAV(path string, format fixed.Format) (Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return Signal{}, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return Signal{}, fmt.Errorf("dataset: %s: not a valid WAV file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Signal{}, fmt.Errorf("dataset: %s: %w", path, err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return Signal{}, fmt.Errorf("dataset: %s: no channels", path)
	}

	norm := math.Exp2(float64(decoder.BitDepth - 1))
	samples := make([]float64, 0, len(buf.Data)/channels)

	for i := 0; i < len(buf.Data); i += channels {
		samples = append(samples, float64(buf.Data[i])/norm)
	}

	sig := FromFloat(path, float64(decoder.SampleRate), samples, format)

	return sig, nil
}
