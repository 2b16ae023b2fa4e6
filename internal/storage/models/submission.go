// internal/storage/models/submission.go
package models

// Submission status values.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
	StatusTimedOut  = "timed_out"
)

// Submission is one journaled transaction. It never carries key material.
type Submission struct {
	BaseModel
	Signature     string
	Network       string
	Operation     string
	WalletAddress string
	Mint          string
	MetadataURI   string
	Status        string
	ErrorMessage  string
	Slot          uint64
}

// Terminal reports whether the status can no longer change.
func (s *Submission) Terminal() bool {
	return s.Status == StatusConfirmed || s.Status == StatusFailed
}
