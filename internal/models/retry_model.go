package models

import "time"

// RetryRecord is a durable note that an operation on a Post failed and is
// owed one automated re-attempt. Records are resolved in place, never
// deleted, so the table doubles as an audit trail.
type RetryRecord struct {
	ID        string    `json:"id"`
	Operation string    `json:"operation"` // generate, publish
	RecordID  string    `json:"record_id"` // target Post record
	Details   string    `json:"details"`
	Status    string    `json:"status"` // Pending, Completed, Failed
	Created   time.Time `json:"created"`
}

const (
	RetryStatusPending   = "Pending"
	RetryStatusCompleted = "Completed"
	RetryStatusFailed    = "Failed"
)

const (
	OperationGenerate = "generate"
	OperationPublish  = "publish"
)
