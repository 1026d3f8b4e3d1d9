package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// DefaultSkippedDirs are directory names never descended into while scanning.
// Anything else under the root is indexed unless the caller names it in skipDirs.
var DefaultSkippedDirs = []string{".git"}

// SourceFile is a file selected for indexing.
type SourceFile struct {
	RelPath string // Relative path from the root, slash-separated (e.g. "Services/OrderService.cs")
	AbsPath string
}

// ScanSourceFiles walks root recursively and returns the files whose extension is in
// extensions (case-insensitive, with leading dot), in lexical path order.
// Directories named in DefaultSkippedDirs or skipDirs are not descended into;
// the root itself is never skipped.
func ScanSourceFiles(ctx context.Context, root string, extensions, skipDirs []string) ([]SourceFile, error) {
	skipped := make(map[string]struct{}, len(DefaultSkippedDirs)+len(skipDirs))
	for _, name := range DefaultSkippedDirs {
		skipped[name] = struct{}{}
	}
	for _, name := range skipDirs {
		if name = strings.TrimSpace(name); name != "" {
			skipped[name] = struct{}{}
		}
	}

	var files []SourceFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			if path != root {
				if _, skip := skipped[d.Name()]; skip {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !d.Type().IsRegular() || !hasExtension(path, extensions) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}

		files = append(files, SourceFile{
			RelPath: filepath.ToSlash(relPath),
			AbsPath: path,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

func hasExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	for _, want := range extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}
