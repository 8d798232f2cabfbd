package storage

import "time"

// OrphanedBlob describes a blob that could not be deleted and is no longer
// referenced by any transaction.
type OrphanedBlob struct {
	Key           string    `json:"key"`
	URL           string    `json:"url"`
	TransactionID string    `json:"transactionId"`
	Reason        string    `json:"reason"`
	OccurredAt    time.Time `json:"occurredAt"`
}
