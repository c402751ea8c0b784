package models

import "time"

// RowError describes why a single CSV row was rejected.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type BulkImportResult struct {
	Message       string     `json:"message"`
	InsertedCount int        `json:"insertedCount"`
	ErrorCount    int        `json:"errorCount"`
	Errors        []RowError `json:"errors"`
}

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobFailed     JobStatus = "failed"
)

// ImportJob tracks an asynchronous bulk import queued through Redis.
type ImportJob struct {
	ID        string            `json:"id"`
	Status    JobStatus         `json:"status"`
	UploadKey string            `json:"uploadKey"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Result    *BulkImportResult `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
}
