package domain

// Outcome is the terminal state of one pass through the ingestion pipeline
type Outcome string

const (
	OutcomeDropped  Outcome = "dropped"
	OutcomePending  Outcome = "pending"
	OutcomeAccepted Outcome = "accepted"
)

// IngestResult reports what happened to a candidate
type IngestResult struct {
	Outcome   Outcome
	Item      ClipboardItem // set when accepted
	PendingID string        // set when pending
	Reason    string        // set when dropped
}

// PendingItem describes a candidate waiting for the user to confirm it
type PendingItem struct {
	ID        string
	Kind      Kind
	Text      string
	Size      int64
	SourceApp string
}

// ImportResult summarises an import merge
type ImportResult struct {
	Imported int
	Skipped  int
}
