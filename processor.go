package iso8583

import (
	"context"
	"log/slog"
	"sync"
)

// Processor decodes many raw messages concurrently over a shared Codec.
type Processor struct {
	codec        *Codec
	concurrency  int          // Max number of goroutines for processing
	errorHandler func(error)  // Callback for handling errors
	logger       *slog.Logger // Used by the default error handler
}

// ProcessorOption defines a function signature for configuring a Processor.
type ProcessorOption func(*Processor)

// WithConcurrency sets the maximum number of concurrent goroutines for the processor.
func WithConcurrency(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithErrorHandler sets a custom error handler for errors encountered during
// batch or stream processing.
func WithErrorHandler(handler func(error)) ProcessorOption {
	return func(p *Processor) {
		p.errorHandler = handler
	}
}

// WithProcessorLogger sets the logger of the default error handler.
func WithProcessorLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = l
	}
}

// NewProcessor creates a new Processor over codec, or over the default
// codec when codec is nil.
func NewProcessor(codec *Codec, opts ...ProcessorOption) *Processor {
	if codec == nil {
		codec = defaultCodec
	}
	p := &Processor{
		codec:       codec,
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.errorHandler == nil {
		logger := p.logger
		if logger == nil {
			logger = slog.Default()
		}
		p.errorHandler = func(err error) {
			logger.Warn("iso8583 processor failed to decode message", "error", err)
		}
	}
	return p
}

// Process decodes a single raw ISO8583 message.
func (p *Processor) Process(data []byte) (*Message, error) {
	return p.codec.Decode(data)
}

// ProcessBatch decodes a slice of raw messages concurrently, at most
// p.concurrency at a time. Results are aligned with the input and failed
// entries are nil. The first failure by index is returned as a
// *BatchError next to the partial results. Cancelling ctx stops new work
// and returns ctx.Err() once running decodes finish.
func (p *Processor) ProcessBatch(ctx context.Context, dataSlice [][]byte) ([]*Message, error) {
	results := make([]*Message, len(dataSlice))
	errs := make([]error, len(dataSlice))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.concurrency) // Limit concurrent goroutines

	for i, data := range dataSlice {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return results, err
		}
		select {
		case <-ctx.Done():
			wg.Wait()
			return results, ctx.Err()
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int, msgData []byte) {
			defer wg.Done()
			defer func() { <-semaphore }()

			msg, err := p.codec.Decode(msgData)
			if err != nil {
				errs[idx] = err
				p.errorHandler(&BatchError{Index: idx, Err: err})
				return
			}
			results[idx] = msg
		}(i, data)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return results, &BatchError{Index: i, Err: err}
		}
	}
	return results, nil
}

// ProcessStream decodes messages from input until it is closed or ctx is
// done, and sends each decoded Message to output. Order is not preserved.
// Messages that fail to decode go to the error handler.
func (p *Processor) ProcessStream(ctx context.Context, input <-chan []byte, output chan<- *Message) error {
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.concurrency)

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()

		case data, ok := <-input:
			if !ok {
				wg.Wait()
				return nil
			}

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				wg.Wait()
				return ctx.Err()
			}

			wg.Add(1)
			go func(msgData []byte) {
				defer wg.Done()
				defer func() { <-semaphore }()

				msg, err := p.codec.Decode(msgData)
				if err != nil {
					p.errorHandler(err)
					return
				}

				select {
				case output <- msg:
				case <-ctx.Done():
				}
			}(data)
		}
	}
}
