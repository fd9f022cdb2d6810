package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davenolan/littleshop-backend/pkg/migrate"
)

func TestCatalogMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_catalog.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no catalog migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE merchants",
		"CREATE TABLE items",
		"CREATE TABLE coupons",
		"CREATE TABLE invoices",
		"REFERENCES merchants(id) ON DELETE CASCADE",
		"CREATE UNIQUE INDEX idx_coupons_code ON coupons(code)",
		"CHECK (discount_type IN ('percent', 'dollar'))",
		"CHECK (status IN ('shipped', 'returned', 'packaged', 'pending'))",
		"CREATE UNIQUE INDEX idx_invoices_coupon_id ON invoices(coupon_id)",
		"WHERE coupon_id IS NOT NULL",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
