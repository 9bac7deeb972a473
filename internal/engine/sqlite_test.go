package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmartens/shopvault/internal/core/domain"
)

func TestSQLiteDumperRoundTrip(t *testing.T) {
	root := t.TempDir()
	dbPath := filepath.Join(root, "store.db")
	if err := os.WriteFile(dbPath, []byte("live-database-bytes"), 0o644); err != nil {
		t.Fatalf("write db: %v", err)
	}

	settings := domain.DefaultSettings(filepath.Join(root, "backups"))
	settings.DBName = dbPath

	d := NewSQLiteDumper()
	result, err := d.Dump(context.Background(), DumpOptions{
		Settings:   settings,
		OutputPath: filepath.Join(root, "backups", "database_test.sql"),
		Compress:   true,
	})
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if filepath.Ext(result.Path) != ".gz" {
		t.Errorf("expected .gz artifact, got %s", result.Path)
	}
	info, err := os.Stat(result.Path)
	if err != nil {
		t.Fatalf("stat artifact: %v", err)
	}
	if info.Size() != result.Size {
		t.Errorf("recorded size %d does not match disk %d", result.Size, info.Size())
	}

	// Corrupt the live database, then restore and verify the bytes came back.
	if err := os.WriteFile(dbPath, []byte("corrupted"), 0o644); err != nil {
		t.Fatalf("overwrite db: %v", err)
	}
	if err := d.Restore(context.Background(), RestoreOptions{
		Settings:  settings,
		InputPath: result.Path,
	}); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	got, err := os.ReadFile(dbPath)
	if err != nil {
		t.Fatalf("read restored db: %v", err)
	}
	if string(got) != "live-database-bytes" {
		t.Errorf("restored content mismatch: %q", got)
	}
}

func TestSQLiteDumperUncompressed(t *testing.T) {
	root := t.TempDir()
	dbPath := filepath.Join(root, "store.db")
	if err := os.WriteFile(dbPath, []byte("plain"), 0o644); err != nil {
		t.Fatalf("write db: %v", err)
	}

	settings := domain.DefaultSettings(root)
	settings.DBName = dbPath

	result, err := NewSQLiteDumper().Dump(context.Background(), DumpOptions{
		Settings:   settings,
		OutputPath: filepath.Join(root, "database_plain.sql"),
		Compress:   false,
	})
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}

	got, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(got) != "plain" {
		t.Errorf("uncompressed dump should be a byte copy, got %q", got)
	}
}

func TestSQLiteDumperMissingPath(t *testing.T) {
	settings := domain.DefaultSettings(t.TempDir())

	if _, err := NewSQLiteDumper().Dump(context.Background(), DumpOptions{
		Settings:   settings,
		OutputPath: filepath.Join(t.TempDir(), "out.sql"),
	}); err == nil {
		t.Fatal("expected error when database path is unset")
	}
}

func TestForEngine(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: "sqlite"},
		{name: "mysql"},
		{name: "postgres", wantErr: true},
		{name: "", wantErr: true},
	}

	for _, tt := range tests {
		d, err := ForEngine(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ForEngine(%q): expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("ForEngine(%q): %v", tt.name, err)
			continue
		}
		if d.Name() != tt.name {
			t.Errorf("ForEngine(%q).Name() = %q", tt.name, d.Name())
		}
	}
}
