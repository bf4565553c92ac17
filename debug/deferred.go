package debug

import (
	"context"
	"sync/atomic"
	"time"
)

type entry struct {
	category string
	format   string
	args     []any
}

var (
	deferred = make(chan entry, 256)
	dropped  atomic.Uint64
)

// Defer queues a message for Flush instead of writing it. It never blocks,
// so the audio goroutine uses it; a full queue drops the message and counts
// it.
func Defer(category, format string, args ...any) {
	if current.Load() == nil {
		return
	}
	select {
	case deferred <- entry{category: category, format: format, args: args}:
	default:
		dropped.Add(1)
	}
}

// Dropped counts deferred messages lost to a full queue.
func Dropped() uint64 {
	return dropped.Load()
}

// Flush writes every queued message and returns how many it wrote.
func Flush() int {
	n := 0
	for {
		select {
		case e := <-deferred:
			Log(e.category, e.format, e.args...)
			n++
		default:
			return n
		}
	}
}

// RunDeferred flushes the queue every interval until ctx is done.
func RunDeferred(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			Flush()
			return nil
		case <-t.C:
			Flush()
		}
	}
}
