package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsMessage(t *testing.T) {
	var out syncBuffer
	s := newSpinner("Scanning...")
	s.out = &out
	s.Start()
	time.Sleep(120 * time.Millisecond)
	s.SetMessage("Scanning... 12 files")
	time.Sleep(120 * time.Millisecond)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Scanning...") {
		t.Errorf("output %q lacks the first message", got)
	}
	if !strings.Contains(got, "12 files") {
		t.Errorf("output %q lacks the updated message", got)
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			s := newSpinnerWithContext(ctx, "Waiting...")
			s.out = &syncBuffer{}
			s.Start()
			time.Sleep(100 * time.Millisecond)
			if !s.Cancelled() {
				t.Error("spinner should be cancelled with its context")
			}
			s.Stop()
		})
	}
}

func TestSpinnerStop(t *testing.T) {
	s := newSpinner("Idle")
	s.out = &syncBuffer{}
	// Stop before Start must not block.
	s.Stop()
	s.Stop()

	s = newSpinner("Running")
	s.out = &syncBuffer{}
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
	if !s.Cancelled() {
		t.Error("stopped spinner should report Cancelled")
	}
}

func TestSpinnerStopWithResult(t *testing.T) {
	s := newSpinner("Rendering...")
	s.out = &syncBuffer{}
	s.Start()
	s.StopWithSuccess("Rendered")

	s = newSpinner("Rendering...")
	s.out = &syncBuffer{}
	s.Start()
	s.StopWithError("Render failed")
}
