package logger_test

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winddc/winddc/internal/logger"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{" WARN ", zerolog.WarnLevel, false},
		{"loud", zerolog.NoLevel, true},
	}
	for _, tt := range tests {
		got, err := logger.ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestComponentAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger.Set(logger.New(&buf, zerolog.InfoLevel, false))
	t.Cleanup(func() { logger.Set(zerolog.Nop()) })

	logger.Debug().Msg("hidden")
	l := logger.With("writer")
	l.Info().Uint16("target", 42).Msg("write")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "component=writer")
	assert.Contains(t, out, "target=42")
}

func TestInitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "log.txt")
	closer, err := logger.Init(logger.Options{Level: "debug", File: path})
	require.NoError(t, err)
	t.Cleanup(reset)

	logger.Debug().Msg("hello file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}

func TestInitRejectsBadLevel(t *testing.T) {
	_, err := logger.Init(logger.Options{Level: "shouty"})
	assert.Error(t, err)
}

func reset() {
	logger.Set(zerolog.Nop())
	logger.SetLevel(zerolog.TraceLevel)
}

func TestSetLevelReachesDerivedLoggers(t *testing.T) {
	var buf bytes.Buffer
	logger.Set(logger.New(&buf, zerolog.TraceLevel, false))
	t.Cleanup(reset)

	tray := logger.With("tray")
	logger.SetLevel(zerolog.WarnLevel)
	tray.Info().Msg("quiet")
	logger.Info().Msg("also quiet")

	logger.SetLevel(zerolog.DebugLevel)
	tray.Debug().Msg("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "loud")
}

func TestSetLevelWhileLogging(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	logger.Set(logger.New(syncWriter{&mu, &buf}, zerolog.TraceLevel, false))
	t.Cleanup(reset)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 200 {
			if i%2 == 0 {
				logger.SetLevel(zerolog.DebugLevel)
			} else {
				logger.SetLevel(zerolog.ErrorLevel)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for range 200 {
			logger.Debug().Msg("tick")
		}
	}()
	wg.Wait()
}

type syncWriter struct {
	mu  *sync.Mutex
	buf *bytes.Buffer
}

func (w syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}
