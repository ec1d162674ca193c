package output

import (
	"errors"
	"testing"
	"time"
)

func TestSummaryRequestsPerSecond(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		summary Summary
		want    float64
	}{
		{
			name: "normal_calculation",
			summary: Summary{
				ExecutedRequests: 10,
				TotalDuration:    2 * time.Second,
			},
			want: 5.0,
		},
		{
			name: "zero_duration",
			summary: Summary{
				ExecutedRequests: 10,
				TotalDuration:    0,
			},
			want: 0.0,
		},
		{
			name: "fractional_result",
			summary: Summary{
				ExecutedRequests: 3,
				TotalDuration:    2 * time.Second,
			},
			want: 1.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.summary.RequestsPerSecond(); got != tt.want {
				t.Errorf("RequestsPerSecond() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummaryPercentages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		summary     Summary
		wantSuccess float64
		wantFailure float64
	}{
		{
			name: "all_passed",
			summary: Summary{
				ExecutedFiles:  5,
				SucceededFiles: 5,
			},
			wantSuccess: 100.0,
			wantFailure: 0.0,
		},
		{
			name: "partial",
			summary: Summary{
				ExecutedFiles:  10,
				SucceededFiles: 7,
				FailedFiles:    3,
			},
			wantSuccess: 70.0,
			wantFailure: 30.0,
		},
		{
			name:        "no_files",
			summary:     Summary{},
			wantSuccess: 0.0,
			wantFailure: 0.0,
		},
		{
			name: "all_failed",
			summary: Summary{
				ExecutedFiles: 5,
				FailedFiles:   5,
			},
			wantSuccess: 0.0,
			wantFailure: 100.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.summary.SuccessPercentage(); got != tt.wantSuccess {
				t.Errorf("SuccessPercentage() = %v, want %v", got, tt.wantSuccess)
			}
			if got := tt.summary.FailurePercentage(); got != tt.wantFailure {
				t.Errorf("FailurePercentage() = %v, want %v", got, tt.wantFailure)
			}
		})
	}
}

func TestCalculateAggregatedStats(t *testing.T) {
	t.Parallel()

	summaries := []*Summary{
		{
			ExecutedFiles:    2,
			ExecutedRequests: 10,
			SucceededFiles:   2,
			FailedFiles:      0,
			TotalDuration:    1 * time.Second,
		},
		{
			ExecutedFiles:    3,
			ExecutedRequests: 15,
			SucceededFiles:   2,
			FailedFiles:      1,
			TotalDuration:    2 * time.Second,
		},
		{
			ExecutedFiles:    1,
			ExecutedRequests: 5,
			SucceededFiles:   1,
			FailedFiles:      0,
			TotalDuration:    500 * time.Millisecond,
		},
	}

	stats := CalculateAggregatedStats(summaries)

	want := AggregatedStats{
		TotalExecutedFiles:    6,
		TotalExecutedRequests: 30,
		TotalSucceededFiles:   5,
		TotalFailedFiles:      1,
		TotalDuration:         3500 * time.Millisecond,
		SuccessfulIterations:  2,
		IterationCount:        3,
	}

	if stats != want {
		t.Errorf("CalculateAggregatedStats() = %+v, want %+v", stats, want)
	}

	if got := stats.FailedIterations(); got != 1 {
		t.Errorf("FailedIterations() = %v, want 1", got)
	}
	if got := stats.AvgFilesPerIteration(); got != 2.0 {
		t.Errorf("AvgFilesPerIteration() = %v, want 2.0", got)
	}
	if got := stats.AvgRequestsPerIteration(); got != 10.0 {
		t.Errorf("AvgRequestsPerIteration() = %v, want 10.0", got)
	}
}

func TestNewSummary(t *testing.T) {
	t.Parallel()

	summary := NewSummary(3)
	if summary == nil {
		t.Fatal("NewSummary() returned nil")
	}
	if cap(summary.FileResults) != 3 {
		t.Errorf("FileResults capacity = %v, want 3", cap(summary.FileResults))
	}
	if len(summary.FileResults) != 0 {
		t.Errorf("FileResults length = %v, want 0", len(summary.FileResults))
	}
}

func TestSummaryAdd(t *testing.T) {
	t.Parallel()

	summary := NewSummary(2)

	summary.Add(FileResult{
		Filename:     "checks/api.yaml",
		RequestCount: 3,
		Duration:     time.Second,
	})

	if summary.ExecutedFiles != 1 || summary.ExecutedRequests != 3 {
		t.Errorf("after first Add: files = %d, requests = %d", summary.ExecutedFiles, summary.ExecutedRequests)
	}
	if summary.SucceededFiles != 1 || summary.FailedFiles != 0 {
		t.Errorf("after first Add: succeeded = %d, failed = %d", summary.SucceededFiles, summary.FailedFiles)
	}

	summary.Add(FileResult{
		Filename:     "checks/expired.yaml",
		RequestCount: 2,
		Duration:     time.Second,
		Error:        errors.New("certificate expire_date assertion failed"),
	})

	if summary.ExecutedFiles != 2 || summary.ExecutedRequests != 5 {
		t.Errorf("after second Add: files = %d, requests = %d", summary.ExecutedFiles, summary.ExecutedRequests)
	}
	if summary.SucceededFiles != 1 || summary.FailedFiles != 1 {
		t.Errorf("after second Add: succeeded = %d, failed = %d", summary.SucceededFiles, summary.FailedFiles)
	}

	first := summary.FileResults[0]
	if first.Filename != "checks/api.yaml" || first.Error != nil {
		t.Errorf("first result = %+v", first)
	}
	second := summary.FileResults[1]
	if second.Filename != "checks/expired.yaml" || second.Error == nil {
		t.Errorf("second result = %+v", second)
	}
}

func TestSummarySetTotalDuration(t *testing.T) {
	t.Parallel()

	summary := NewSummary(1)
	summary.SetTotalDuration(5 * time.Second)

	if summary.TotalDuration != 5*time.Second {
		t.Errorf("TotalDuration = %v, want 5s", summary.TotalDuration)
	}
}
