package shared

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	c := Load()
	if c.HTTPAddr != ":8080" || c.DataSource != "csv" || c.CSVPath != "Reviews.csv" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.CacheTTL != 300*time.Second || c.MissingFieldMode != "lenient" || c.NegativeRating != 1 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.RedisAddr != "" {
		t.Fatalf("redis should be disabled by default, got %q", c.RedisAddr)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATA_SOURCE", "MySQL")
	t.Setenv("DELTA_PRECISION", "2")
	t.Setenv("IMPORT_WORKERS", "nope")
	t.Setenv("CACHE_TTL_SECONDS", "10")

	c := Load()
	if c.DataSource != "mysql" {
		t.Fatalf("expected lowercased source, got %q", c.DataSource)
	}
	if c.DeltaPrecision != 2 {
		t.Fatalf("expected precision 2, got %d", c.DeltaPrecision)
	}
	if c.ImportWorkers != 4 {
		t.Fatalf("invalid int should fall back to default, got %d", c.ImportWorkers)
	}
	if c.CacheTTL != 10*time.Second {
		t.Fatalf("unexpected ttl %v", c.CacheTTL)
	}
}
