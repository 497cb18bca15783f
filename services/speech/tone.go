package speechsvc

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	toneSampleRate = 22050
	toneFreqHz     = 440.0
	toneAmplitude  = 0.1

	// rough silent-reading pace used to size the tone to its slide
	charsPerSecond = 12.0
)

// writeFallbackTone writes a quiet sine tone WAV standing in for a narration
// the engine could not produce. The tone lasts about as long as the text
// would take to read, clamped to floorSec so the slide stays on screen.
func writeFallbackTone(path, text string, floorSec float64) error {
	sec := float64(utf8.RuneCountInString(text)) / charsPerSecond
	if sec < floorSec {
		sec = floorSec
	}

	samples := int(sec * toneSampleRate)
	dataLen := uint32(samples * 2)

	buf := bytes.NewBuffer(make([]byte, 0, 44+int(dataLen)))
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36)+dataLen)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))                // chunk size
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))                 // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))                 // mono
	_ = binary.Write(buf, binary.LittleEndian, uint32(toneSampleRate))    // sample rate
	_ = binary.Write(buf, binary.LittleEndian, uint32(toneSampleRate*2))  // byte rate
	_ = binary.Write(buf, binary.LittleEndian, uint16(2))                 // block align
	_ = binary.Write(buf, binary.LittleEndian, uint16(16))                // bits per sample
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, dataLen)

	// short ramps at both ends avoid audible clicks on segment joins
	ramp := toneSampleRate / 20
	for i := 0; i < samples; i++ {
		amp := toneAmplitude
		if i < ramp {
			amp *= float64(i) / float64(ramp)
		} else if rem := samples - i; rem < ramp {
			amp *= float64(rem) / float64(ramp)
		}
		v := amp * math.Sin(2*math.Pi*toneFreqHz*float64(i)/toneSampleRate)
		_ = binary.Write(buf, binary.LittleEndian, int16(v*math.MaxInt16))
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "writing fallback tone")
	}
	return nil
}
