package pool

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/valpere/codetran/internal/config"
	"github.com/valpere/codetran/internal/profile"
)

// Discover walks root and returns the candidate files, each exactly once:
// supported extension, not under a skipped directory, not oversized. A
// root that is itself a supported file yields a single candidate.
func Discover(root string, cfg *config.Config) ([]string, error) {
	skipDirs := make(map[string]bool, len(cfg.SkipDirs))
	for _, d := range cfg.SkipDirs {
		skipDirs[d] = true
	}
	skipExts := make(map[string]bool, len(cfg.SkipExtensions))
	for _, e := range cfg.SkipExtensions {
		skipExts[strings.ToLower(e)] = true
	}

	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = config.DefaultMaxFileSize
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			if !cfg.Recursive {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if skipExts[ext] {
			return nil
		}
		if _, ok := profile.ForExtension(ext); !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil // racing deletion, not fatal
		}
		if info.Size() > maxSize {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
