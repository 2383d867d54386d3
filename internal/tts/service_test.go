package tts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahcohcat/newsbreeze/config"
)

type fakeSynth struct {
	err   error
	calls int
	last  string
}

func (f *fakeSynth) Synthesize(_ context.Context, text string, voice Voice) (*AudioClip, error) {
	f.calls++
	f.last = text
	if f.err != nil {
		return nil, f.err
	}
	return &AudioClip{Audio: silentWav(50), Format: "wav", Voice: voice.ID}, nil
}

func (f *fakeSynth) Name() string { return "fake" }

type fakeCache struct {
	clips map[string][]byte
	puts  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{clips: make(map[string][]byte)}
}

func (f *fakeCache) Get(key string) ([]byte, string, bool) {
	audio, ok := f.clips[key]
	return audio, "wav", ok
}

func (f *fakeCache) Put(key, voice, format string, audio []byte) error {
	f.puts++
	f.clips[key] = audio
	return nil
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(&config.TtsConfig{})
	require.NoError(t, err)
	return r
}

func TestSpeakWithValidVoice(t *testing.T) {
	backend := &fakeSynth{}
	svc := NewService(backend, newTestRegistry(t), nil, 0)

	clip, res, err := svc.Speak(context.Background(), "hello world", "german")
	require.NoError(t, err)
	assert.NotEmpty(t, clip.Audio)
	assert.Contains(t, []string{"mp3", "wav"}, clip.Format)
	assert.Equal(t, "german", res.Voice.ID)
	assert.False(t, res.FellBack)
}

func TestSpeakUnknownVoiceFallsBackToDefault(t *testing.T) {
	backend := &fakeSynth{}
	svc := NewService(backend, newTestRegistry(t), nil, 0)

	clip, res, err := svc.Speak(context.Background(), "hello world", "klingon")
	require.NoError(t, err)
	assert.NotEmpty(t, clip.Audio)
	assert.Equal(t, "en-us-female", res.Voice.ID)
	assert.True(t, res.FellBack)
	assert.NotEmpty(t, res.Suggestion)
}

func TestSpeakEmptyTextIsSynthesisError(t *testing.T) {
	svc := NewService(&fakeSynth{}, newTestRegistry(t), nil, 0)

	_, _, err := svc.Speak(context.Background(), "", "german")
	require.Error(t, err)

	var synthErr *SynthesisError
	assert.ErrorAs(t, err, &synthErr)
}

func TestSpeakTwiceYieldsTwoValidClips(t *testing.T) {
	backend := &fakeSynth{}
	svc := NewService(backend, newTestRegistry(t), nil, 0)

	first, _, err := svc.Speak(context.Background(), "same text", "german")
	require.NoError(t, err)
	second, _, err := svc.Speak(context.Background(), "same text", "german")
	require.NoError(t, err)

	// The backend may be non-deterministic: both must be valid and
	// playable, byte equality is not required.
	assert.NotEmpty(t, first.Audio)
	assert.NotEmpty(t, second.Audio)
	assert.Equal(t, 2, backend.calls)
}

func TestSpeakUsesClipCache(t *testing.T) {
	backend := &fakeSynth{}
	clips := newFakeCache()
	svc := NewService(backend, newTestRegistry(t), clips, 0)

	_, _, err := svc.Speak(context.Background(), "cached text", "german")
	require.NoError(t, err)
	_, _, err = svc.Speak(context.Background(), "cached text", "german")
	require.NoError(t, err)

	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, 1, clips.puts)
}

func TestSpeakCapsLongText(t *testing.T) {
	backend := &fakeSynth{}
	svc := NewService(backend, newTestRegistry(t), nil, 100)

	_, _, err := svc.Speak(context.Background(), strings.Repeat("x", 500), "german")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(backend.last), 103)
}

func TestSpeakWrapsBackendError(t *testing.T) {
	backend := &fakeSynth{err: errors.New("quota exceeded")}
	svc := NewService(backend, newTestRegistry(t), nil, 0)

	_, res, err := svc.Speak(context.Background(), "hello", "german")
	require.Error(t, err)

	var synthErr *SynthesisError
	require.ErrorAs(t, err, &synthErr)
	assert.Equal(t, "german", synthErr.Voice)
	assert.Equal(t, "german", res.Voice.ID)
}

func TestCacheKeyDistinguishesVoices(t *testing.T) {
	a := CacheKey("text", "german", "fake")
	b := CacheKey("text", "french", "fake")
	c := CacheKey("text", "german", "fake")

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, c)
}

func TestDummySynthesizerProducesPlayableWav(t *testing.T) {
	clip, err := NewDummyTTS().Synthesize(context.Background(), "anything", Voice{ID: "en-us-female"})
	require.NoError(t, err)

	assert.Equal(t, "wav", clip.Format)
	assert.Greater(t, len(clip.Audio), 44)
	assert.Equal(t, "RIFF", string(clip.Audio[0:4]))
	assert.Equal(t, "WAVE", string(clip.Audio[8:12]))
}
