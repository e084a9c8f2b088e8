package domain

import (
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:domain_models?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	if (Destination{}).TableName() != "destinations" {
		t.Fatalf("Destination.TableName() = %q; want %q", (Destination{}).TableName(), "destinations")
	}
	if (ErrorRecord{}).TableName() != "error_records" {
		t.Fatalf("ErrorRecord.TableName() = %q; want %q", (ErrorRecord{}).TableName(), "error_records")
	}
}

func TestMigrations_UniqueIndexes(t *testing.T) {
	db := newDomainDB(t)

	if err := db.AutoMigrate(&Destination{}, &ErrorRecord{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()

	for _, tbl := range []any{&Destination{}, &ErrorRecord{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}

	// The composite unique indexes are the concurrency arbiters; make sure
	// the migrator actually created them.
	if !m.HasIndex(&Destination{}, "ux_dest_link_project") {
		t.Fatalf("expected unique index ux_dest_link_project on destinations")
	}
	if !m.HasIndex(&ErrorRecord{}, "ux_error_destination") {
		t.Fatalf("expected unique index ux_error_destination on error_records")
	}
}

func TestUniqueIndex_ErrorPerDestination(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(&Destination{}, &ErrorRecord{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	first := &ErrorRecord{
		ID: "r1", ErrorID: "abc123", DestinationID: "d1",
		ProjectName: "p1", ErrorType: "ValueError", ErrorValue: "boom",
		SourceURL: "https://x", EventID: "e1", ThreadID: 7,
	}
	if err := db.Create(first).Error; err != nil {
		t.Fatalf("seed first record: %v", err)
	}

	dup := &ErrorRecord{
		ID: "r2", ErrorID: "abc123", DestinationID: "d1",
		ProjectName: "p1", ErrorType: "ValueError", ErrorValue: "boom",
		SourceURL: "https://x", EventID: "e2", ThreadID: 8,
	}
	if err := db.Create(dup).Error; err == nil {
		t.Fatalf("expected unique violation for same (error_id, destination_id)")
	}

	// Same error in a different destination is a separate row.
	other := &ErrorRecord{
		ID: "r3", ErrorID: "abc123", DestinationID: "d2",
		ProjectName: "p1", ErrorType: "ValueError", ErrorValue: "boom",
		SourceURL: "https://x", EventID: "e1", ThreadID: 9,
	}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("same error in another destination should insert: %v", err)
	}
}

func TestUniqueIndex_DestinationPair(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(&Destination{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	if err := db.Create(&Destination{ID: "d1", ChatID: -100, ChatLink: "https://t.me/+abc", ProjectName: "p1"}).Error; err != nil {
		t.Fatalf("seed destination: %v", err)
	}
	err := db.Create(&Destination{ID: "d2", ChatID: -100, ChatLink: "https://t.me/+abc", ProjectName: "p1"}).Error
	if err == nil {
		t.Fatalf("expected unique violation for same (chat_link, project_name)")
	}
	// Same link for a different project is allowed.
	if err := db.Create(&Destination{ID: "d3", ChatID: -100, ChatLink: "https://t.me/+abc", ProjectName: "p2"}).Error; err != nil {
		t.Fatalf("same link, different project should insert: %v", err)
	}
}
