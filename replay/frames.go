package replay

import (
	"context"
	"time"
)

// FrameSource delivers monotonic frame timestamps until ctx is done or the source is exhausted.
type FrameSource interface {
	Frames(ctx context.Context) <-chan time.Duration
}

// TickerFrames emits frames at a fixed rate using a time.Ticker.
type TickerFrames struct {
	FPS int
}

// Frames starts the ticker; the channel closes when ctx is cancelled.
func (f TickerFrames) Frames(ctx context.Context) <-chan time.Duration {
	fps := f.FPS
	if fps <= 0 {
		fps = 60
	}
	out := make(chan time.Duration)
	go func() {
		defer close(out)
		ticker := time.NewTicker(time.Second / time.Duration(fps))
		defer ticker.Stop()
		start := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case out <- time.Since(start):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// TickerFrameFactory builds a fresh ticker source per session.
func TickerFrameFactory(fps int) func() FrameSource {
	return func() FrameSource { return TickerFrames{FPS: fps} }
}

// ManualFrames is a FrameSource fed by the caller, for tests and offline rendering.
type ManualFrames struct {
	ch chan time.Duration
}

// NewManualFrames creates a source with room for buffered pending frames.
func NewManualFrames(buffer int) *ManualFrames {
	return &ManualFrames{ch: make(chan time.Duration, buffer)}
}

// Push queues a frame timestamp.
func (m *ManualFrames) Push(at time.Duration) {
	m.ch <- at
}

// Finish ends the stream once queued frames are consumed.
func (m *ManualFrames) Finish() {
	close(m.ch)
}

// Frames returns the queued timestamps. ctx is honoured by the consumer.
func (m *ManualFrames) Frames(_ context.Context) <-chan time.Duration {
	return m.ch
}
