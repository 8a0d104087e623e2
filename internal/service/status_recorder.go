package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"parcelbook/internal/model"
	"parcelbook/internal/repository"
)

const (
	statusBatchSize     = 10
	statusFlushInterval = time.Second
)

// statusRecorder writes parcel status history asynchronously in batches.
type statusRecorder struct {
	repo    repository.ParcelStatusEventRepository
	events  chan model.ParcelStatusEvent
	flushes chan chan struct{}
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

func newStatusRecorder(repo repository.ParcelStatusEventRepository) *statusRecorder {
	r := &statusRecorder{
		repo:    repo,
		events:  make(chan model.ParcelStatusEvent, 100),
		flushes: make(chan chan struct{}),
		done:    make(chan struct{}),
	}
	go r.run(context.Background())
	return r
}

// record queues an event. When the queue is full it is written synchronously.
func (r *statusRecorder) record(ctx context.Context, event model.ParcelStatusEvent) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.write(ctx, []model.ParcelStatusEvent{event})
		return
	}
	select {
	case r.events <- event:
	default:
		r.write(ctx, []model.ParcelStatusEvent{event})
	}
}

// flush blocks until every event queued before the call is stored.
func (r *statusRecorder) flush(ctx context.Context) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	ack := make(chan struct{})
	select {
	case r.flushes <- ack:
	case <-ctx.Done():
		return
	}
	select {
	case <-ack:
	case <-ctx.Done():
	}
}

// close drains the queue and stops the worker.
func (r *statusRecorder) close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.events)
	r.mu.Unlock()
	<-r.done
}

func (r *statusRecorder) run(ctx context.Context) {
	defer close(r.done)
	batch := make([]model.ParcelStatusEvent, 0, statusBatchSize)
	ticker := time.NewTicker(statusFlushInterval)
	defer ticker.Stop()

	drain := func() {
		for {
			select {
			case event, ok := <-r.events:
				if !ok {
					return
				}
				batch = append(batch, event)
			default:
				return
			}
		}
	}

	for {
		select {
		case event, ok := <-r.events:
			if !ok {
				r.write(ctx, batch)
				return
			}
			batch = append(batch, event)
			if len(batch) >= statusBatchSize {
				r.write(ctx, batch)
				batch = batch[:0]
			}
		case ack := <-r.flushes:
			drain()
			r.write(ctx, batch)
			batch = batch[:0]
			close(ack)
		case <-ticker.C:
			if len(batch) > 0 {
				r.write(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

func (r *statusRecorder) write(ctx context.Context, batch []model.ParcelStatusEvent) {
	if len(batch) == 0 {
		return
	}
	if err := r.repo.CreateBatch(ctx, batch); err != nil {
		slog.ErrorContext(ctx, "write status history failed", "events", len(batch), "error", err)
	}
}
