// Package natives unpacks platform binaries from downloaded native bundles.
package natives

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultSuffixes are the file extensions treated as native binaries.
var DefaultSuffixes = []string{".so", ".dll", ".dylib"}

// ErrArchiveOpen matches any *ArchiveOpenError.
var ErrArchiveOpen = errors.New("open native archive")

// ArchiveOpenError is returned in strict mode when a file in the source
// directory cannot be read as a zip archive.
type ArchiveOpenError struct {
	Path string
	Err  error
}

func (e *ArchiveOpenError) Error() string {
	return fmt.Sprintf("open native archive %s: %v", e.Path, e.Err)
}

func (e *ArchiveOpenError) Unwrap() error { return e.Err }

func (e *ArchiveOpenError) Is(target error) bool { return target == ErrArchiveOpen }

// Logger receives diagnostics for skipped archives.
type Logger interface {
	Warn(msg any, keyvals ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(any, ...any) {}

// Extractor copies native binaries out of every archive under a directory.
type Extractor struct {
	Suffixes []string
	Strict   bool
	Logger   Logger
}

// Result lists written files and archives that could not be opened.
type Result struct {
	Extracted []string
	Skipped   []string
}

// Extract walks srcDir, opens each regular file as a zip and writes entries
// with a native suffix into outDir under their base name. Later entries with
// the same name overwrite earlier ones. srcDir is removed once every archive
// has been processed.
func (e *Extractor) Extract(srcDir, outDir string) (Result, error) {
	var res Result
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return res, fmt.Errorf("ensure natives dir: %w", err)
	}

	suffixes := e.Suffixes
	if len(suffixes) == 0 {
		suffixes = DefaultSuffixes
	}
	logger := e.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	err := filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		reader, err := zip.OpenReader(p)
		if err != nil {
			if e.Strict {
				return &ArchiveOpenError{Path: p, Err: err}
			}
			logger.Warn("skipping unreadable native archive", "path", p, "err", err)
			res.Skipped = append(res.Skipped, p)
			return nil
		}
		defer reader.Close()

		for _, file := range reader.File {
			if file.FileInfo().IsDir() || !hasSuffix(file.Name, suffixes) {
				continue
			}
			name := entryBase(file.Name)
			if name == "" {
				continue
			}
			target := filepath.Join(outDir, name)
			if err := writeEntry(file, target); err != nil {
				return err
			}
			res.Extracted = append(res.Extracted, target)
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("extract natives: %w", err)
	}

	if err := os.RemoveAll(srcDir); err != nil {
		return res, fmt.Errorf("remove natives temp dir: %w", err)
	}
	return res, nil
}

// entryBase returns the last element of a zip entry name, treating
// backslashes as separators. It returns "" when nothing usable is left.
func entryBase(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	switch base {
	case ".", "..", "/":
		return ""
	}
	return base
}

func hasSuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

func writeEntry(file *zip.File, target string) error {
	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("open zip entry %s: %w", file.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("copy file %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close file %s: %w", target, err)
	}
	return nil
}
