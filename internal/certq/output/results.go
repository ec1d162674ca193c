package output

import "time"

// FileResult records the outcome of one executed check file.
type FileResult struct {
	Filename     string
	RequestCount int
	Duration     time.Duration
	Error        error
}

// Summary accumulates results for a single pass over the check files.
type Summary struct {
	FileResults      []FileResult
	ExecutedFiles    int
	ExecutedRequests int
	SucceededFiles   int
	FailedFiles      int
	TotalDuration    time.Duration
}

// NewSummary creates a Summary sized for the expected number of files.
func NewSummary(expectedFiles int) *Summary {
	return &Summary{
		FileResults: make([]FileResult, 0, expectedFiles),
	}
}

// Add records one file result and updates the counters.
func (s *Summary) Add(result FileResult) {
	s.FileResults = append(s.FileResults, result)
	s.ExecutedFiles++
	s.ExecutedRequests += result.RequestCount
	if result.Error != nil {
		s.FailedFiles++
	} else {
		s.SucceededFiles++
	}
}

// SetTotalDuration records the wall-clock time for the whole pass.
func (s *Summary) SetTotalDuration(duration time.Duration) {
	s.TotalDuration = duration
}

// RequestsPerSecond reports throughput, 0 when no time has elapsed.
func (s *Summary) RequestsPerSecond() float64 {
	seconds := s.TotalDuration.Seconds()
	if seconds <= 0 {
		return 0
	}

	return float64(s.ExecutedRequests) / seconds
}

// SuccessPercentage reports the share of files that passed.
func (s *Summary) SuccessPercentage() float64 {
	return percentage(s.SucceededFiles, s.ExecutedFiles)
}

// FailurePercentage reports the share of files that failed.
func (s *Summary) FailurePercentage() float64 {
	return percentage(s.FailedFiles, s.ExecutedFiles)
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}

	return float64(part) / float64(total) * 100
}

// AggregatedStats sums summaries across repeat iterations.
type AggregatedStats struct {
	TotalExecutedFiles    int
	TotalExecutedRequests int
	TotalSucceededFiles   int
	TotalFailedFiles      int
	TotalDuration         time.Duration
	SuccessfulIterations  int
	IterationCount        int
}

// CalculateAggregatedStats folds per-iteration summaries into totals.
// An iteration counts as successful when none of its files failed.
func CalculateAggregatedStats(summaries []*Summary) AggregatedStats {
	stats := AggregatedStats{
		IterationCount: len(summaries),
	}

	for _, summary := range summaries {
		stats.TotalExecutedFiles += summary.ExecutedFiles
		stats.TotalExecutedRequests += summary.ExecutedRequests
		stats.TotalSucceededFiles += summary.SucceededFiles
		stats.TotalFailedFiles += summary.FailedFiles
		stats.TotalDuration += summary.TotalDuration
		if summary.FailedFiles == 0 {
			stats.SuccessfulIterations++
		}
	}

	return stats
}

// FailedIterations reports how many iterations had at least one failed file.
func (a AggregatedStats) FailedIterations() int {
	return a.IterationCount - a.SuccessfulIterations
}

// IterationSuccessRate reports the share of fully successful iterations.
func (a AggregatedStats) IterationSuccessRate() float64 {
	return percentage(a.SuccessfulIterations, a.IterationCount)
}

// OverallRequestsPerSecond reports throughput across all iterations.
func (a AggregatedStats) OverallRequestsPerSecond() float64 {
	seconds := a.TotalDuration.Seconds()
	if seconds <= 0 {
		return 0
	}

	return float64(a.TotalExecutedRequests) / seconds
}

// AvgFilesPerIteration reports the mean number of files per iteration.
func (a AggregatedStats) AvgFilesPerIteration() float64 {
	if a.IterationCount == 0 {
		return 0
	}

	return float64(a.TotalExecutedFiles) / float64(a.IterationCount)
}

// AvgRequestsPerIteration reports the mean number of requests per iteration.
func (a AggregatedStats) AvgRequestsPerIteration() float64 {
	if a.IterationCount == 0 {
		return 0
	}

	return float64(a.TotalExecutedRequests) / float64(a.IterationCount)
}

// AvgDurationPerIteration reports the mean wall-clock time per iteration.
func (a AggregatedStats) AvgDurationPerIteration() time.Duration {
	if a.IterationCount == 0 {
		return 0
	}

	return a.TotalDuration / time.Duration(a.IterationCount)
}
