// Package domain defines the persistence models for the alert routing
// bridge: tracked errors and their chat destinations. These types are
// mapped with GORM and form the core data layer of the application.
package domain

import "time"

// Destination represents a configured Telegram chat target for a project.
// Incoming error reports are routed to the destination whose ProjectName
// matches the report's project; reports for unmapped projects fall back to
// the default chat configured at process level.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - ChatID: Telegram supergroup identifier the threads live in.
//   - ChatLink: human-shareable invite link for the group.
//   - ProjectName: monitor-side project this destination serves.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//
// The (chat_link, project_name) pair is unique: registering the same pair
// twice must return the existing row, never create a second one. The unique
// index is the arbiter under concurrent registration — the losing writer
// observes a duplicate-key error and rereads.
type Destination struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	ChatID      int64     `json:"chat_id"      gorm:"not null;index"`
	ChatLink    string    `json:"chat_link"    gorm:"type:varchar(255);not null;uniqueIndex:ux_dest_link_project,priority:1"`
	ProjectName string    `json:"project_name" gorm:"type:varchar(255);not null;uniqueIndex:ux_dest_link_project,priority:2;index:idx_dest_project"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Destination.
func (Destination) TableName() string { return "destinations" }

// ErrorRecord represents one distinct monitor error as tracked in a given
// destination. The first sighting of an error creates a discussion thread in
// the destination chat and persists the thread id here; every later sighting
// of the same error reuses that thread instead of opening a new one.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - ErrorID: opaque error identifier assigned by the monitor.
//   - DestinationID: destination whose chat hosts the thread.
//   - ProjectName / ErrorType / ErrorValue / SourceURL / EventID:
//     diagnostic fields captured from the first report; absent fields carry
//     the "not received" sentinel from the ingest layer.
//   - ThreadID: Telegram forum topic id. Set exactly once at creation and
//     never updated afterwards.
//   - ReceivedAt: when the first report for this error arrived.
//
// The (error_id, destination_id) pair is unique — at most one record, hence
// at most one linked thread, per error per destination. Rows are never
// deleted by the bridge; retention is out of scope.
type ErrorRecord struct {
	ID            string    `json:"id"             gorm:"type:char(36);primaryKey"`
	ErrorID       string    `json:"error_id"       gorm:"type:varchar(64);not null;uniqueIndex:ux_error_destination,priority:1"`
	DestinationID string    `json:"destination_id" gorm:"type:char(36);not null;uniqueIndex:ux_error_destination,priority:2;index"`
	ProjectName   string    `json:"project_name"   gorm:"type:varchar(255);not null"`
	ErrorType     string    `json:"error_type"     gorm:"type:varchar(255);not null"`
	ErrorValue    string    `json:"error_value"    gorm:"type:varchar(255);not null"`
	SourceURL     string    `json:"source_url"     gorm:"type:varchar(255);not null"`
	EventID       string    `json:"event_id"       gorm:"type:varchar(64);not null"`
	ThreadID      int64     `json:"thread_id"      gorm:"not null"`
	ReceivedAt    time.Time `json:"received_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for ErrorRecord.
func (ErrorRecord) TableName() string { return "error_records" }
