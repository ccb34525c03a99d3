package upload

// UploadStatus represents the status of a file upload
type UploadStatus string

const (
	StatusSuccess UploadStatus = "success"
	StatusFailed  UploadStatus = "failed"
	StatusSkipped UploadStatus = "skipped"
)

// UploadResult represents the result of uploading a single file
type UploadResult struct {
	FilePath string
	FileName string
	Status   UploadStatus
	Error    error
	Message  string
}

// UploadSummary contains aggregated upload results
type UploadSummary struct {
	Total   int
	Success int
	Failed  int
	Skipped int
	Results []UploadResult
}

// NewUploadSummary creates a new UploadSummary from results
func NewUploadSummary(results []UploadResult) *UploadSummary {
	summary := &UploadSummary{
		Total:   len(results),
		Results: results,
	}
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			summary.Success++
		case StatusFailed:
			summary.Failed++
		case StatusSkipped:
			summary.Skipped++
		}
	}
	return summary
}

// HasFailures reports whether any file failed to upload
func (s *UploadSummary) HasFailures() bool {
	return s.Failed > 0
}

// ProgressFunc is told which file is being uploaded. index counts from 0;
// a final call with index == total and an empty name marks completion.
type ProgressFunc func(fileName string, index, total int)
