package engine

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ArchiveOptions controls the media tree tar.gz archive.
type ArchiveOptions struct {
	// ExcludeDirs are absolute paths skipped entirely. The backup directory
	// itself always belongs here so archives never recurse into their own
	// output.
	ExcludeDirs      []string
	ExcludeLogs      bool
	CompressionLevel int
}

// CreateArchive writes the tree rooted at srcDir into a tar.gz at outPath
// and returns the archive size.
func CreateArchive(ctx context.Context, srcDir, outPath string, opts ArchiveOptions) (int64, error) {
	srcDir = filepath.Clean(srcDir)
	if info, err := os.Stat(srcDir); err != nil {
		return 0, fmt.Errorf("failed to stat media directory: %w", err)
	} else if !info.IsDir() {
		return 0, fmt.Errorf("media path is not a directory: %s", srcDir)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create backup directory: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewWriterLevel(f, compressionLevel(opts.CompressionLevel))
	if err != nil {
		return 0, fmt.Errorf("invalid compression level: %w", err)
	}
	tw := tar.NewWriter(gz)

	excluded := make(map[string]bool, len(opts.ExcludeDirs))
	for _, dir := range opts.ExcludeDirs {
		excluded[filepath.Clean(dir)] = true
	}

	err = filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() && excluded[filepath.Clean(path)] {
			return filepath.SkipDir
		}
		if opts.ExcludeLogs && !info.IsDir() && strings.HasSuffix(info.Name(), ".log") {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)

		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()

		return copyChunks(ctx, tw, src)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to archive media directory: %w", err)
	}

	if err := tw.Close(); err != nil {
		return 0, fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		return 0, fmt.Errorf("failed to finalize gzip stream: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to close archive: %w", err)
	}

	stat, err := os.Stat(outPath)
	if err != nil {
		return 0, fmt.Errorf("failed to stat archive: %w", err)
	}
	return stat.Size(), nil
}

// ExtractArchive unpacks archivePath into dstDir. With overwrite false and
// an existing non-empty dstDir, the current tree is first renamed to
// <dstDir>.pre-restore-<timestamp> and a fresh directory is extracted into.
func ExtractArchive(ctx context.Context, archivePath, dstDir string, overwrite bool) error {
	dstDir = filepath.Clean(dstDir)

	if !overwrite {
		if err := moveAside(dstDir); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}

		target, err := securePath(dstDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode)); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			if fi, err := os.Lstat(target); err == nil && fi.Mode()&os.ModeSymlink != 0 {
				return fmt.Errorf("archive entry writes through a symlink: %s", header.Name)
			}
			dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(header.Mode))
			if err != nil {
				return fmt.Errorf("failed to create file: %w", err)
			}
			if err := copyChunks(ctx, dst, tr); err != nil {
				dst.Close()
				return fmt.Errorf("failed to extract %s: %w", header.Name, err)
			}
			if err := dst.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", header.Name, err)
			}
		case tar.TypeSymlink:
			if err := secureLink(dstDir, header.Name, header.Linkname); err != nil {
				return err
			}
			if err := os.Symlink(header.Linkname, target); err != nil && !os.IsExist(err) {
				return fmt.Errorf("failed to create symlink: %w", err)
			}
		}
	}
}

func moveAside(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat media directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("media path is not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read media directory: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	aside := fmt.Sprintf("%s.pre-restore-%s", dir, time.Now().Format("20060102-150405"))
	if err := os.Rename(dir, aside); err != nil {
		return fmt.Errorf("failed to move existing media aside: %w", err)
	}
	return nil
}

// securePath rejects archive entries escaping the destination directory.
func securePath(dstDir, name string) (string, error) {
	target := filepath.Join(dstDir, filepath.FromSlash(name))
	if !strings.HasPrefix(target, dstDir+string(os.PathSeparator)) && target != dstDir {
		return "", fmt.Errorf("archive entry escapes destination: %s", name)
	}
	return target, nil
}

// secureLink rejects symlink entries whose target resolves outside the
// destination directory, so later entries cannot write through them.
func secureLink(dstDir, name, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("archive symlink escapes destination: %s", name)
	}
	resolved := filepath.Join(filepath.Dir(filepath.FromSlash(name)), filepath.FromSlash(linkname))
	if _, err := securePath(dstDir, resolved); err != nil {
		return fmt.Errorf("archive symlink escapes destination: %s", name)
	}
	return nil
}
