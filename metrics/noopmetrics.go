package metrics

var _ Tracer = (*NoOpMetrics)(nil)

type NoOpMetrics struct{}

func NewNoOpMetrics() *NoOpMetrics {
	return &NoOpMetrics{}
}

func (m *NoOpMetrics) RecordQueryFetch(entity string) {}

func (m *NoOpMetrics) RecordCacheHit(entity string) {}

func (m *NoOpMetrics) RecordFetchError(entity string) {}

func (m *NoOpMetrics) RecordFetchRetry(entity string) {}

func (m *NoOpMetrics) RecordPollTick() {}

func (m *NoOpMetrics) RecordMutationSubmitted() {}

func (m *NoOpMetrics) RecordMutationFailed() {}

func (m *NoOpMetrics) UpdateActiveQueries(count int) {}

func (m *NoOpMetrics) UpdateLatestBlockNumber(blockNumber uint64) {}

func (m *NoOpMetrics) UpdateConnected(connected bool) {}
