package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBooksMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_books.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no books migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE genre AS ENUM",
		"CREATE TYPE language AS ENUM",
		"CREATE TYPE approval_status AS ENUM ('under_review', 'approved', 'rejected', 'archived')",
		"CREATE TYPE upload_status AS ENUM ('pending', 'uploaded')",
		"CREATE TABLE IF NOT EXISTS books",
		"FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE",
		"CHECK (char_length(description) >= 60)",
		"CREATE INDEX IF NOT EXISTS idx_books_approval_status",
		"DROP TABLE IF EXISTS books",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestReviewPlansMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_review_plans.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no review plans migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE plan_type AS ENUM ('starter', 'bronze', 'silver', 'gold')",
		"CREATE TYPE plan_status AS ENUM ('active', 'completed', 'cancelled')",
		"CREATE TABLE IF NOT EXISTS review_plans",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_review_plans_book_id",
		"CHECK (used_reviews >= 0 AND used_reviews <= total_reviews)",
		"DROP TABLE IF EXISTS review_plans",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
