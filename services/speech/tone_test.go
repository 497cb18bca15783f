package speechsvc

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteFallbackTone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")

	err := writeFallbackTone(path, "a short narration", 2.0)
	assert.NoError(t, err)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	// RIFF/WAVE header with a PCM fmt chunk
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[20:22]))
	assert.Equal(t, uint32(toneSampleRate), binary.LittleEndian.Uint32(data[24:28]))

	// text shorter than the floor still yields a two second clip
	dataLen := binary.LittleEndian.Uint32(data[40:44])
	assert.Equal(t, uint32(2*toneSampleRate*2), dataLen)
	assert.Equal(t, int(44+dataLen), len(data))
}

func TestWriteFallbackToneScalesWithText(t *testing.T) {
	dir := t.TempDir()
	short := filepath.Join(dir, "short.wav")
	long := filepath.Join(dir, "long.wav")

	assert.NoError(t, writeFallbackTone(short, "hi", 2.0))
	assert.NoError(t, writeFallbackTone(long, strings.Repeat("word ", 50), 2.0))

	fiShort, err := os.Stat(short)
	assert.NoError(t, err)
	fiLong, err := os.Stat(long)
	assert.NoError(t, err)
	assert.Greater(t, fiLong.Size(), fiShort.Size())
}
