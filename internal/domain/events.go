package domain

// Event is an outcome surfaced to the user through the notification sink
type Event string

const (
	EventMonitoringPaused   Event = "monitoringPaused"
	EventMonitoringResumed  Event = "monitoringResumed"
	EventMigrationSucceeded Event = "migrationSucceeded"
	EventMigrationFailed    Event = "migrationFailed"
)

// MigrationStats describes a legacy history migration
type MigrationStats struct {
	Legacy   int // items decoded from the legacy file
	Existing int // items already in the chunked store
	Merged   int // items in the store afterwards
	Hashed   int // file items that received a content hash
}
