package engine

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// sqliteDumper backs up a file-based sqlite store by copying the database
// file. Settings.DBName holds the path to the live database file.
type sqliteDumper struct{}

func NewSQLiteDumper() Dumper {
	return &sqliteDumper{}
}

func (d *sqliteDumper) Name() string {
	return EngineSQLite
}

func (d *sqliteDumper) Dump(ctx context.Context, opts DumpOptions) (*DumpResult, error) {
	srcPath := opts.Settings.DBName
	if srcPath == "" {
		return nil, fmt.Errorf("sqlite database path not configured")
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database file: %w", err)
	}
	defer src.Close()

	outPath := opts.OutputPath
	if opts.Compress {
		outPath += ".gz"
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	dst, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create dump file: %w", err)
	}
	defer dst.Close()

	var w io.Writer = dst
	var gz *gzip.Writer
	if opts.Compress {
		gz, err = gzip.NewWriterLevel(dst, compressionLevel(opts.Settings.CompressionLevel))
		if err != nil {
			return nil, fmt.Errorf("invalid compression level: %w", err)
		}
		w = gz
	}

	if err := copyChunks(ctx, w, src); err != nil {
		return nil, fmt.Errorf("failed to copy database file: %w", err)
	}

	if gz != nil {
		if err := gz.Close(); err != nil {
			return nil, fmt.Errorf("failed to finalize gzip stream: %w", err)
		}
	}
	if err := dst.Close(); err != nil {
		return nil, fmt.Errorf("failed to close dump file: %w", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat dump file: %w", err)
	}

	return &DumpResult{Path: outPath, Size: info.Size()}, nil
}

func (d *sqliteDumper) Restore(ctx context.Context, opts RestoreOptions) error {
	dstPath := opts.Settings.DBName
	if dstPath == "" {
		return fmt.Errorf("sqlite database path not configured")
	}

	src, err := os.Open(opts.InputPath)
	if err != nil {
		return fmt.Errorf("failed to open dump file: %w", err)
	}
	defer src.Close()

	var r io.Reader = src
	if strings.HasSuffix(opts.InputPath, ".gz") {
		gz, err := gzip.NewReader(src)
		if err != nil {
			return fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	// Write to a temp file beside the target, then rename into place so a
	// failed restore never leaves a truncated live database.
	tmp, err := os.CreateTemp(filepath.Dir(dstPath), ".restore-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := copyChunks(ctx, tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write database file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, dstPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace database file: %w", err)
	}

	return nil
}

// copyChunks copies in fixed-size chunks, checking for cancellation between
// chunks so large dumps abort promptly.
func copyChunks(ctx context.Context, dst io.Writer, src io.Reader) error {
	buf := make([]byte, 1<<20)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func compressionLevel(level int) int {
	if level < gzip.BestSpeed || level > gzip.BestCompression {
		return gzip.DefaultCompression
	}
	return level
}
