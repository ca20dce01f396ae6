package processor

import (
	"context"

	"github.com/rohmanhakim/web-scrapper/pkg/failure"
)

// ChannelProcessor is an in-memory DataProcessor backed by a channel,
// decoupling the crawl from whatever consumes the bodies. Used by
// tests and as a building block for piping pages into an external
// queue.
type ChannelProcessor struct {
	bus chan []byte
}

func NewChannelProcessor(buffer int) *ChannelProcessor {
	return &ChannelProcessor{
		bus: make(chan []byte, buffer),
	}
}

func (p *ChannelProcessor) Init(ctx context.Context) failure.ClassifiedError {
	return nil
}

func (p *ChannelProcessor) Feed(ctx context.Context, body []byte) failure.ClassifiedError {
	select {
	case p.bus <- body:
		return nil
	case <-ctx.Done():
		return &ProcessorError{
			Message: ctx.Err().Error(),
			Cause:   ErrCauseFeedRejected,
		}
	}
}

// Bus exposes the consuming side of the queue.
func (p *ChannelProcessor) Bus() <-chan []byte {
	return p.bus
}

func (p *ChannelProcessor) Close() error {
	close(p.bus)
	return nil
}
