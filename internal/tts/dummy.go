package tts

import (
	"context"
	"encoding/binary"

	"github.com/tahcohcat/newsbreeze/internal/logger"
)

// DummyTTS produces a short silent WAV clip so the app can run
// end-to-end without any speech credentials.
type DummyTTS struct {
	logger *logger.Log
}

func NewDummyTTS() *DummyTTS {
	return &DummyTTS{logger: logger.New()}
}

func (d *DummyTTS) Name() string {
	return "dummy"
}

func (d *DummyTTS) Synthesize(_ context.Context, text string, voice Voice) (*AudioClip, error) {
	d.logger.Debug("no tts backend configured, returning silence")
	return &AudioClip{Audio: silentWav(250), Format: "wav", Voice: voice.ID}, nil
}

// silentWav builds a valid 16kHz mono PCM WAV of the given duration.
func silentWav(durationMs int) []byte {
	const sampleRate = 16000
	samples := sampleRate * durationMs / 1000
	dataLen := samples * 2

	buf := make([]byte, 44+dataLen)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], sampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], sampleRate*2)
	binary.LittleEndian.PutUint16(buf[32:34], 2)
	binary.LittleEndian.PutUint16(buf[34:36], 16)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))
	return buf
}
