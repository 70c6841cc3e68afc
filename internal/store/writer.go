package store

import (
	"context"
	"sync"
)

// writer persists snapshots on a background goroutine. Only the newest
// pending snapshot is kept: a burst of mutations costs one write. The save
// contexts of coalesced snapshots are carried forward so listeners still
// see every operation.
type writer struct {
	save   func(*Snapshot) error
	onDone func(job, error)

	queue chan job

	mu      sync.Mutex
	queued  uint64
	written uint64
	signal  chan struct{} // closed and replaced after each write
	closed  bool

	stop chan struct{}
	done chan struct{}
}

type job struct {
	seq   uint64
	snap  *Snapshot
	saves []SaveContext
}

func newWriter(save func(*Snapshot) error, onDone func(job, error)) *writer {
	w := &writer{
		save:   save,
		onDone: onDone,
		queue:  make(chan job, 1),
		signal: make(chan struct{}),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.loop()
	return w
}

// submit queues snap, replacing any snapshot still waiting. Callers hold the
// store lock, so there is a single producer at a time. It never blocks.
func (w *writer) submit(snap *Snapshot, sc SaveContext) bool {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return false
	}
	w.queued++
	j := job{seq: w.queued, snap: snap, saves: []SaveContext{sc}}
	w.mu.Unlock()

	select {
	case w.queue <- j:
		return true
	default:
	}
	select {
	case prev := <-w.queue:
		j.saves = append(prev.saves, j.saves...)
	default:
	}
	w.queue <- j
	return true
}

func (w *writer) loop() {
	defer close(w.done)
	for {
		select {
		case j := <-w.queue:
			w.run(j)
		case <-w.stop:
			select {
			case j := <-w.queue:
				w.run(j)
			default:
			}
			return
		}
	}
}

func (w *writer) run(j job) {
	err := w.save(j.snap)
	if w.onDone != nil {
		w.onDone(j, err)
	}

	w.mu.Lock()
	if j.seq > w.written {
		w.written = j.seq
	}
	close(w.signal)
	w.signal = make(chan struct{})
	w.mu.Unlock()
}

// flush waits until every snapshot submitted before the call has been
// written, or ctx is done.
func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	target := w.queued
	w.mu.Unlock()

	for {
		w.mu.Lock()
		if w.written >= target {
			w.mu.Unlock()
			return nil
		}
		sig := w.signal
		w.mu.Unlock()

		select {
		case <-sig:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// close writes whatever is pending and stops the goroutine. Later submits
// are refused.
func (w *writer) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stop)
	<-w.done
}
