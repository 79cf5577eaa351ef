package logger

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, verboseOn bool) *bytes.Buffer {
	t.Helper()
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseOn)
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestSetOutput(t *testing.T) {
	buf := capture(t, true)
	assert.Same(t, buf, Output())
}

func TestLevels_WhenVerbose(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { Debug("cache miss for %s", "x^2") }, "[DEBUG] cache miss for x^2\n"},
		{"info", func() { Info("converted %d inputs", 42) }, "[INFO] converted 42 inputs\n"},
		{"warn", func() { Warn("token log unavailable") }, "[WARN] token log unavailable\n"},
		{"section", func() { Section("Convert") }, "[INFO] === Convert ===\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, true)
			tt.log()
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestLevels_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("debug %d", 1)
	Info("info")
	Warn("warn")
	Section("Section")

	assert.Empty(t, buf.String())
}

func TestConcurrentAccess(t *testing.T) {
	buf := capture(t, true)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Debug("message %d", n)
			_ = IsVerbose()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, strings.Count(buf.String(), "[DEBUG]"))
}
