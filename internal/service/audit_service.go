package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ranger-acl/rangeracl/internal/domain/audit"
)

// AuditEmitter (C8) delivers audit records to a Sink asynchronously over a
// buffered channel, so a slow or unreachable audit index never adds
// latency to a decision response. Adapted from the teacher's
// backpressure-aware audit worker: fast non-blocking send, then a bounded
// blocking send, then drop-and-count; batched flush with an adaptive
// fast-flush mode when the channel fills up.
type AuditEmitter struct {
	sink          audit.Sink
	recordChan    chan audit.Record
	done          chan struct{}
	wg            sync.WaitGroup
	logger        *slog.Logger
	batchSize     int
	flushInterval time.Duration

	channelSize int
	sendTimeout time.Duration
	dropCount   atomic.Int64

	warningThreshold int
	lastWarning      atomic.Int64

	adaptiveFlushThreshold int
}

// EmitterOption configures an AuditEmitter.
type EmitterOption func(*AuditEmitter)

func WithBatchSize(size int) EmitterOption {
	return func(e *AuditEmitter) { e.batchSize = size }
}

func WithFlushInterval(interval time.Duration) EmitterOption {
	return func(e *AuditEmitter) { e.flushInterval = interval }
}

func WithChannelSize(size int) EmitterOption {
	return func(e *AuditEmitter) {
		e.recordChan = make(chan audit.Record, size)
		e.channelSize = size
	}
}

func WithSendTimeout(timeout time.Duration) EmitterOption {
	return func(e *AuditEmitter) { e.sendTimeout = timeout }
}

func WithWarningThreshold(percent int) EmitterOption {
	return func(e *AuditEmitter) { e.warningThreshold = clampPercent(percent) }
}

func WithAdaptiveFlushThreshold(percent int) EmitterOption {
	return func(e *AuditEmitter) { e.adaptiveFlushThreshold = clampPercent(percent) }
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// NewAuditEmitter creates an AuditEmitter writing through sink.
func NewAuditEmitter(sink audit.Sink, logger *slog.Logger, opts ...EmitterOption) *AuditEmitter {
	const defaultChannelSize = 1000
	e := &AuditEmitter{
		sink:                   sink,
		recordChan:             make(chan audit.Record, defaultChannelSize),
		done:                   make(chan struct{}),
		logger:                 logger,
		batchSize:              100,
		flushInterval:          time.Second,
		channelSize:            defaultChannelSize,
		sendTimeout:            100 * time.Millisecond,
		warningThreshold:       80,
		adaptiveFlushThreshold: 80,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins the background worker.
func (e *AuditEmitter) Start(ctx context.Context) {
	e.wg.Add(1)
	go e.worker(ctx)
}

// Emit queues record for delivery. Never blocks longer than sendTimeout;
// beyond that the record is dropped and counted rather than stalling the
// decision pipeline that called it.
func (e *AuditEmitter) Emit(record audit.Record) {
	if e.warningThreshold > 0 {
		depth := len(e.recordChan)
		threshold := e.channelSize * e.warningThreshold / 100
		if depth >= threshold {
			e.warnChannelDepth(depth)
		}
	}

	select {
	case e.recordChan <- record:
		return
	default:
	}

	if e.sendTimeout <= 0 {
		e.recordDrop(record)
		return
	}

	select {
	case e.recordChan <- record:
		return
	case <-time.After(e.sendTimeout):
		e.recordDrop(record)
	}
}

func (e *AuditEmitter) recordDrop(record audit.Record) {
	drops := e.dropCount.Add(1)
	e.logger.Warn("audit record dropped", "resource", record.Resource, "user", record.ReqUser, "total_drops", drops)
}

func (e *AuditEmitter) warnChannelDepth(depth int) {
	now := time.Now().UnixNano()
	last := e.lastWarning.Load()
	if now-last < int64(time.Second) {
		return
	}
	if e.lastWarning.CompareAndSwap(last, now) {
		e.logger.Warn("audit channel approaching capacity", "depth", depth, "capacity", e.channelSize, "percent", depth*100/e.channelSize)
	}
}

// DroppedRecords returns total dropped records, for metrics/health.
func (e *AuditEmitter) DroppedRecords() int64 { return e.dropCount.Load() }

// ChannelDepth returns current channel usage, for metrics/health.
func (e *AuditEmitter) ChannelDepth() int { return len(e.recordChan) }

// ChannelCapacity returns the channel buffer size.
func (e *AuditEmitter) ChannelCapacity() int { return e.channelSize }

// Stop closes the intake channel and waits for the worker to flush and exit.
func (e *AuditEmitter) Stop() {
	close(e.recordChan)
	e.wg.Wait()
}

func (e *AuditEmitter) worker(ctx context.Context) {
	defer e.wg.Done()

	batch := make([]audit.Record, 0, e.batchSize)
	ticker := time.NewTicker(e.flushInterval)
	defer ticker.Stop()

	fastMode := false

	for {
		select {
		case record, ok := <-e.recordChan:
			if !ok {
				if len(batch) > 0 {
					flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					e.flush(flushCtx, batch)
					cancel()
				}
				return
			}
			batch = append(batch, record)

			shouldFlush := len(batch) >= e.batchSize
			if !shouldFlush && e.adaptiveFlushThreshold > 0 {
				if depth := len(e.recordChan); depth*100/e.channelSize >= e.adaptiveFlushThreshold {
					shouldFlush = true
				}
			}
			if shouldFlush {
				e.flush(ctx, batch)
				batch = batch[:0]
			}

			if e.adaptiveFlushThreshold > 0 {
				depthPercent := len(e.recordChan) * 100 / e.channelSize
				if depthPercent >= e.adaptiveFlushThreshold && !fastMode {
					ticker.Reset(e.flushInterval / 4)
					fastMode = true
				} else if depthPercent < e.adaptiveFlushThreshold && fastMode {
					ticker.Reset(e.flushInterval)
					fastMode = false
				}
			}

		case <-ticker.C:
			if len(batch) > 0 {
				e.flush(ctx, batch)
				batch = batch[:0]
			}

		case <-ctx.Done():
			for record := range e.recordChan {
				batch = append(batch, record)
			}
			if len(batch) > 0 {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				e.flush(flushCtx, batch)
				cancel()
			}
			return
		}
	}
}

// flush writes a batch to the sink. Errors are logged, never propagated —
// an unreachable audit index must not fail or stall decisions.
func (e *AuditEmitter) flush(ctx context.Context, batch []audit.Record) {
	if err := e.sink.Write(ctx, batch...); err != nil {
		e.logger.Error("failed to write audit batch", "error", err, "count", len(batch))
	}
}
