package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// FileInfo describes a statement file found by Scan.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Scan returns the supported statement files directly inside dir, sorted by name.
// A missing directory yields no files.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading statement dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !Supported(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
