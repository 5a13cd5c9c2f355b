package refine

import (
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/models"
)

// Sink receives progress updates from a running engine. Implementations must
// not block: delivery happens on the engine's goroutine between passes.
type Sink interface {
	Publish(ev models.ProgressEvent)
}

// SinkFunc adapts a plain function to a Sink. A nil SinkFunc discards events.
type SinkFunc func(ev models.ProgressEvent)

func (f SinkFunc) Publish(ev models.ProgressEvent) {
	if f != nil {
		f(ev)
	}
}

// progress wraps a sink and enforces the monotonic, 0..100 percent contract.
type progress struct {
	sink Sink
	last int
}

func newProgress(sink Sink) *progress {
	if sink == nil {
		sink = SinkFunc(nil)
	}
	return &progress{sink: sink}
}

func (p *progress) emit(percent int, message string) {
	if percent > 100 {
		percent = 100
	}
	if percent < p.last {
		percent = p.last
	}
	p.last = percent
	p.sink.Publish(models.ProgressEvent{Percent: percent, Message: message})
}
