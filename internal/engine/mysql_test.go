package engine

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStreamDumpToFileUnblocksProducerOnWriteFailure(t *testing.T) {
	// Target file in a directory that does not exist, so the stream side
	// fails before reading anything.
	outPath := filepath.Join(t.TempDir(), "missing", "dump.sql")

	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go streamDumpToFile(DumpOptions{}, outPath, pr, done)

	// The producing side must not hang once the stream side has given up.
	writeErr := make(chan error, 1)
	go func() {
		_, err := pw.Write(bytes.Repeat([]byte("INSERT INTO orders VALUES (1);\n"), 4096))
		writeErr <- err
	}()

	select {
	case err := <-writeErr:
		if err == nil {
			t.Fatal("expected the pipe write to fail")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pipe write blocked after stream failure")
	}

	select {
	case err := <-done:
		if err == nil || !strings.Contains(err.Error(), "failed to create dump file") {
			t.Fatalf("expected a dump file creation error, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("stream goroutine did not finish")
	}
	pw.Close()
}

func TestStreamDumpToFileWritesTheStream(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "dump.sql")

	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go streamDumpToFile(DumpOptions{}, outPath, pr, done)

	content := "CREATE TABLE orders (id INT);\n"
	if _, err := io.WriteString(pw, content); err != nil {
		t.Fatalf("failed to write to pipe: %v", err)
	}
	pw.Close()

	if err := <-done; err != nil {
		t.Fatalf("stream failed: %v", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read dump: %v", err)
	}
	if string(got) != content {
		t.Fatalf("dump content mismatch: %q", got)
	}
}
