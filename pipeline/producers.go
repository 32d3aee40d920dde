package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/haybale/chaff/arena"
	"github.com/haybale/chaff/content"
	"github.com/haybale/chaff/log"
	"github.com/haybale/chaff/metrics"
	"github.com/haybale/chaff/types"
)

// producerPool runs N workers that pull items from the source, build file
// content, and send results over a bounded channel. The channel bound is
// the backpressure mechanism: when the consumer lags, sends block.
//
// The first worker error cancels the pool; remaining workers observe the
// cancellation and exit, and run returns that first error after the pool
// drains.
type producerPool struct {
	req     *types.GenerationRequest
	workers int
	source  *WorkSource
	builder content.Builder
	arena   *arena.Arena
	metrics *metrics.Collector
	logger  *log.Logger

	// target is the per-file padded size; 0 disables padding.
	target int64
}

// run blocks until every item is produced or the pool fails, then closes
// out. It always closes out exactly once, so the consumer's range loop
// terminates on both paths.
func (p *producerPool) run(ctx context.Context, out chan<- types.FileData) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				item, ok, err := p.source.Next()
				if err != nil {
					fail(err)
					return
				}
				if !ok {
					return
				}

				fd, err := p.build(item)
				if err != nil {
					fail(fmt.Errorf("generate %s: %w", item.DocID(), err))
					return
				}

				select {
				case out <- fd:
				case <-ctx.Done():
					if fd.Release != nil {
						fd.Release()
					}
					return
				}
			}
		}()
	}

	wg.Wait()
	close(out)

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// build produces one FileData, padding the content to the per-file target
// via a rented buffer when a size target is set.
func (p *producerPool) build(item types.WorkItem) (types.FileData, error) {
	res, err := p.builder.Generate(item, p.req)
	if err != nil {
		return types.FileData{}, err
	}

	fd := types.FileData{
		Item:       item,
		Content:    res.Content,
		Attachment: res.Attachment,
		PageCount:  res.PageCount,
	}

	if p.target > int64(len(res.Content)) {
		size := paddedSize(len(res.Content), p.target)

		var padded []byte
		if buf := p.arena.Rent(size); buf != nil {
			padded = buf.Bytes()
			fd.Release = buf.Release
			p.metrics.IncArenaRental()
		} else {
			padded = make([]byte, size)
			p.metrics.IncArenaFallback()
		}

		copy(padded, res.Content)
		fillRandom(padded[len(res.Content):])
		fd.Content = padded
		p.metrics.AddPadBytes(int64(size - len(res.Content)))
	}

	p.metrics.IncFileGenerated(res.PageCount)
	return fd, nil
}
