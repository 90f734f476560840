package query

import (
	"context"
	"sync"

	junoUtils "github.com/NethermindEth/juno/utils"
	"github.com/YohanTz/starknet-query/metrics"
)

// MutationFunc invokes the underlying write operation exactly once per call.
type MutationFunc[V, R any] func(ctx context.Context, variables V) (R, error)

// MutationSnapshot is an immutable view of a mutation's lifecycle state.
type MutationSnapshot[R any] struct {
	Status Status
	Data   R
	Err    error
}

// Mutation tracks the lifecycle of a write-style invocation. Unlike queries
// there is no dedup: every Run is an independent invocation with its own
// transaction. Status moves idle -> loading -> success|error; Reset returns
// to idle at any time, including mid-flight, in which case the in-flight
// result is discarded when it eventually settles.
type Mutation[V, R any] struct {
	mu       sync.Mutex
	fn       MutationFunc[V, R]
	status   Status
	data     R
	err      error
	gen      uint64
	observer func(MutationSnapshot[R])

	logger *junoUtils.ZapLogger
	tracer metrics.Tracer
}

func NewMutation[V, R any](
	fn MutationFunc[V, R], logger *junoUtils.ZapLogger, tracer metrics.Tracer,
) *Mutation[V, R] {
	return &Mutation[V, R]{
		fn:     fn,
		status: StatusIdle,
		logger: logger,
		tracer: tracer,
	}
}

// OnChange registers a single observer notified on every transition.
func (m *Mutation[V, R]) OnChange(fn func(MutationSnapshot[R])) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observer = fn
}

func (m *Mutation[V, R]) Snapshot() MutationSnapshot[R] {
	m.mu.Lock()
	defer m.mu.Unlock()

	return MutationSnapshot[R]{Status: m.status, Data: m.data, Err: m.err}
}

// Run fires the mutation without waiting on the result; state is observed
// through Snapshot or OnChange.
func (m *Mutation[V, R]) Run(ctx context.Context, variables V) {
	go func() {
		//nolint:errcheck // the outcome is reported through the snapshot
		m.RunAsync(ctx, variables)
	}()
}

// RunAsync invokes the operation and returns its outcome to the caller. The
// tracked state reflects the outcome only if no Reset happened mid-flight.
func (m *Mutation[V, R]) RunAsync(ctx context.Context, variables V) (R, error) {
	m.mu.Lock()
	gen := m.gen
	m.status = StatusLoading
	m.err = nil
	snap := MutationSnapshot[R]{Status: m.status, Data: m.data}
	observer := m.observer
	m.mu.Unlock()

	m.tracer.RecordMutationSubmitted()
	if observer != nil {
		observer(snap)
	}

	data, err := m.fn(ctx, variables)

	m.mu.Lock()
	if m.gen != gen {
		// Reset mid-flight: the invocation belongs to a previous generation
		// and must not resurrect state. The caller still gets the result.
		m.mu.Unlock()
		m.logger.Debugw("discarding result of reset mutation")

		return data, err
	}

	if err != nil {
		m.status = StatusError
		m.err = err
	} else {
		m.status = StatusSuccess
		m.data = data
		m.err = nil
	}
	snap = MutationSnapshot[R]{Status: m.status, Data: m.data, Err: m.err}
	observer = m.observer
	m.mu.Unlock()

	if err != nil {
		m.tracer.RecordMutationFailed()
	}
	if observer != nil {
		observer(snap)
	}

	return data, err
}

// Reset returns the mutation to idle and clears data and error. Calling it
// twice is the same as calling it once.
func (m *Mutation[V, R]) Reset() {
	m.mu.Lock()
	m.gen++
	m.status = StatusIdle
	var zero R
	m.data = zero
	m.err = nil
	snap := MutationSnapshot[R]{Status: m.status}
	observer := m.observer
	m.mu.Unlock()

	if observer != nil {
		observer(snap)
	}
}
