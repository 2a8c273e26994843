package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestNewInterruptHandler(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := NewInterruptHandler(buf, "Import", "")
	assert.Equal(t, buf, handler.writer)
	assert.False(t, handler.WasInterrupted())

	handler = NewInterruptHandler(nil, "Import", "")
	assert.NotNil(t, handler.writer)
}

func TestHandleInterrupts_StopCancelsContext(t *testing.T) {
	buf := &syncBuffer{}
	handler := NewInterruptHandler(buf, "Import", "")

	ctx, stop := handler.HandleInterrupts(context.Background())
	stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not canceled by stop")
	}
	assert.False(t, handler.WasInterrupted())
	assert.Empty(t, buf.String())
}

func TestHandleInterrupts_ParentCancellation(t *testing.T) {
	buf := &syncBuffer{}
	handler := NewInterruptHandler(buf, "Import", "")

	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := handler.HandleInterrupts(parent)
	defer stop()

	cancel()
	<-ctx.Done()

	// A canceled parent is not an interrupt.
	time.Sleep(10 * time.Millisecond)
	assert.False(t, handler.WasInterrupted())
	assert.Empty(t, buf.String())
}

func TestShowInterruptMessage(t *testing.T) {
	tests := []struct {
		name     string
		hint     string
		contains []string
		excludes []string
	}{
		{
			name:     "with hint",
			hint:     "Entries posted so far are kept; re-run the import to continue.",
			contains: []string{"Import interrupted!", "re-run the import"},
		},
		{
			name:     "without hint",
			contains: []string{"Import interrupted!"},
			excludes: []string{InfoIcon},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			handler := NewInterruptHandler(buf, "Import", tt.hint)
			handler.showInterruptMessage()

			output := buf.String()
			for _, want := range tt.contains {
				assert.Contains(t, output, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, output, unwanted)
			}
		})
	}
}
