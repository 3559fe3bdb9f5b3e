package sampler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Worker serializes sample assembly. At most one assembly runs at a time and
// at most one trigger waits: a trigger arriving while another is pending
// replaces it, so a burst collapses into a single assembly carrying the
// newest cause. Samples are point-in-time snapshots, so the dropped
// intermediate triggers carry no extra information.
type Worker struct {
	asm      *Assembler
	timeout  time.Duration
	onSample func(*Sample)
	log      *slog.Logger

	mu      sync.Mutex
	pending *Trigger
	latest  *Sample

	kick chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// NewWorker creates a Worker. onSample is called from the worker goroutine
// with each assembled sample (for persistence); it may be nil. timeout
// bounds each Assemble call so a stuck platform read cannot wedge the
// sampler.
func NewWorker(asm *Assembler, timeout time.Duration, onSample func(*Sample), logger *slog.Logger) *Worker {
	return &Worker{
		asm:      asm,
		timeout:  timeout,
		onSample: onSample,
		log:      logger,
		kick:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
}

// Close stops the worker and waits for an in-flight assembly to finish.
func (w *Worker) Close() {
	close(w.done)
	w.wg.Wait()
}

// Submit records a trigger for assembly. Non-blocking; safe from any
// goroutine.
func (w *Worker) Submit(t Trigger) {
	w.mu.Lock()
	w.pending = &t
	w.mu.Unlock()

	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Latest returns the most recently assembled sample, or nil.
func (w *Worker) Latest() *Sample {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.latest
}

func (w *Worker) run() {
	defer w.wg.Done()

	// prev lives only in this goroutine, so the previous-sample hand-off
	// between consecutive assemblies is race-free.
	var prev *Sample
	for {
		select {
		case <-w.kick:
			for {
				w.mu.Lock()
				t := w.pending
				w.pending = nil
				w.mu.Unlock()
				if t == nil {
					break
				}

				start := time.Now()
				ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
				s := w.asm.Assemble(ctx, *t, prev)
				cancel()
				prev = s

				w.mu.Lock()
				w.latest = s
				w.mu.Unlock()

				w.log.Info("sample assembled",
					"trigger", s.TriggeredBy,
					"uuid", s.UUID,
					"took", time.Since(start).Round(time.Millisecond))
				if w.onSample != nil {
					w.onSample(s)
				}
			}
		case <-w.done:
			return
		}
	}
}
