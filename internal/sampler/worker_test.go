package sampler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engMANP/carat/internal/collector"
)

// blockingReaders gates every assembly on release so tests can pile up
// triggers while one assembly is in flight.
type blockingReaders struct {
	entered chan struct{}
	release chan struct{}
}

func newBlockingAssembler(b *blockingReaders) *Assembler {
	readers := happyReaders()
	readers.Memory = func() (*collector.MemoryReading, error) {
		b.entered <- struct{}{}
		<-b.release
		return &collector.MemoryReading{}, nil
	}
	return newTestAssembler(readers, nil, nil, nil)
}

func TestWorker_AssemblesAndStoresLatest(t *testing.T) {
	var (
		mu      sync.Mutex
		samples []*Sample
	)
	w := NewWorker(newTestAssembler(happyReaders(), nil, nil, nil), time.Second, func(s *Sample) {
		mu.Lock()
		samples = append(samples, s)
		mu.Unlock()
	}, discardLogger())
	w.Start()
	defer w.Close()

	w.Submit(TriggerTimer)
	require.Eventually(t, func() bool { return w.Latest() != nil }, time.Second, time.Millisecond)

	s := w.Latest()
	assert.Equal(t, string(TriggerTimer), s.TriggeredBy)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, samples, 1)
	assert.Same(t, s, samples[0])
}

func TestWorker_CoalescesBurst(t *testing.T) {
	b := &blockingReaders{entered: make(chan struct{}), release: make(chan struct{})}

	var (
		mu       sync.Mutex
		triggers []string
	)
	w := NewWorker(newBlockingAssembler(b), time.Second, func(s *Sample) {
		mu.Lock()
		triggers = append(triggers, s.TriggeredBy)
		mu.Unlock()
	}, discardLogger())
	w.Start()
	defer w.Close()

	w.Submit(TriggerTimer)
	<-b.entered // first assembly in flight

	// A burst while busy: only the newest may survive.
	w.Submit(TriggerTimer)
	w.Submit(TriggerBatteryChange)
	w.Submit(TriggerUserAction)

	b.release <- struct{}{}
	<-b.entered // coalesced second assembly
	b.release <- struct{}{}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(triggers) == 2
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{string(TriggerTimer), string(TriggerUserAction)}, triggers)
}

func TestWorker_HandsPreviousSampleToNextAssembly(t *testing.T) {
	readers := happyReaders()
	first := true
	readers.Battery = func() (*collector.BatteryReading, error) {
		if first {
			first = false
			return &collector.BatteryReading{RawLevel: 4200, RawScale: 10000, Status: "Discharging"}, nil
		}
		// Second assembly sees sentinel data and must carry forward.
		return &collector.BatteryReading{RawLevel: -1, RawScale: -1, Status: "Discharging"}, nil
	}

	w := NewWorker(newTestAssembler(readers, nil, nil, nil), time.Second, nil, discardLogger())
	w.Start()
	defer w.Close()

	w.Submit(TriggerTimer)
	require.Eventually(t, func() bool { return w.Latest() != nil }, time.Second, time.Millisecond)
	firstSample := w.Latest()
	assert.InDelta(t, 0.42, firstSample.Battery.Level, 1e-9)

	w.Submit(TriggerBatteryChange)
	require.Eventually(t, func() bool { return w.Latest() != firstSample }, time.Second, time.Millisecond)
	assert.InDelta(t, 0.42, w.Latest().Battery.Level, 1e-9)
}

func TestWorker_CloseStopsProcessing(t *testing.T) {
	w := NewWorker(newTestAssembler(happyReaders(), nil, nil, nil), time.Second, nil, discardLogger())
	w.Start()
	w.Close()

	w.Submit(TriggerTimer)
	time.Sleep(10 * time.Millisecond)
	assert.Nil(t, w.Latest())
}
