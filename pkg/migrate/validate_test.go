package migrate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reviewpromax/reviewpromax-backend/pkg/migrate"
)

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir(migrations): %v", err)
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "001_bad.sql")
	if err := os.WriteFile(bad, []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected error for short version prefix")
	}
}

func TestValidateDirRejectsMissingDown(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "20250810090000_no_down.sql")
	if err := os.WriteFile(f, []byte("-- +goose Up\nSELECT 1;\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected error for missing Down section")
	}
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Review  Plans!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}

	base := filepath.Base(path)
	if want := "_add_review_plans.sql"; len(base) != 14+len(want) {
		t.Errorf("unexpected filename %q", base)
	}

	if err := migrate.ValidateDir(dir); err != nil {
		t.Errorf("generated migration fails validation: %v", err)
	}
}
