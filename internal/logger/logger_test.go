package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestVerboseToggle(t *testing.T) {
	resetLogger(t)

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())
}

func TestLevels_FormatAndPrefix(t *testing.T) {
	buf := resetLogger(t)
	SetVerbose(true)

	tests := []struct {
		name string
		emit func()
		want string
	}{
		{"debug", func() { Debug("searching zone %s", "export") }, "[DEBUG] searching zone export\n"},
		{"info", func() { Info("indexed %d chunks", 42) }, "[INFO] indexed 42 chunks\n"},
		{"warn", func() { Warn("model offline") }, "[WARN] model offline\n"},
		{"section", func() { Section("Reindex") }, "\n=== Reindex ===\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.emit()
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestSilentWhenNotVerbose(t *testing.T) {
	buf := resetLogger(t)
	SetVerbose(false)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Section("hidden")

	assert.Zero(t, buf.Len())
}

func TestConcurrentToggleAndLog(t *testing.T) {
	resetLogger(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			SetVerbose(n%2 == 0)
			Debug("worker %d", n)
			IsVerbose()
		}(i)
	}
	wg.Wait()
}
