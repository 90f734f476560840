package metrics

type Tracer interface {
	RecordQueryFetch(entity string)
	RecordCacheHit(entity string)
	RecordFetchError(entity string)
	RecordFetchRetry(entity string)
	RecordPollTick()
	RecordMutationSubmitted()
	RecordMutationFailed()
	UpdateActiveQueries(count int)
	UpdateLatestBlockNumber(blockNumber uint64)
	UpdateConnected(connected bool)
}
