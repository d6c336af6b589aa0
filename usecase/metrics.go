package usecase

import "time"

// MetricsRecorder is the slice of the metrics collector the usecases touch.
// A nil recorder passed to a constructor degrades to a no-op.
type MetricsRecorder interface {
	RecordPublishSuccess(platform string)
	RecordPublishFailure(platform, kind string)
	RecordPublishLatency(d time.Duration)
	RecordDispatchPass()
	RecordCancelled()
	RecordRetried()
	RecordRefreshFailure(platform string)
}

type noopMetrics struct{}

func (noopMetrics) RecordPublishSuccess(string)         {}
func (noopMetrics) RecordPublishFailure(string, string) {}
func (noopMetrics) RecordPublishLatency(time.Duration)  {}
func (noopMetrics) RecordDispatchPass()                 {}
func (noopMetrics) RecordCancelled()                    {}
func (noopMetrics) RecordRetried()                      {}
func (noopMetrics) RecordRefreshFailure(string)         {}
