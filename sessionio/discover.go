package sessionio

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/lo"

	"github.com/kbukum/sessionscribe/errors"
)

// Discover returns the files in dir matching pattern, sorted by name.
// Files whose base name matches any of the exclude globs are left out.
func Discover(dir, pattern string, exclude ...string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, errors.InvalidInput("pattern", err.Error())
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.IO("stat", dir, err)
	}
	if !info.IsDir() {
		return nil, errors.InvalidInput("dir", dir+" is not a directory")
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, errors.InvalidInput("pattern", err.Error())
	}
	paths := lo.Filter(matches, func(p string, _ int) bool {
		base := filepath.Base(p)
		return isRegular(p) && !lo.SomeBy(exclude, func(ex string) bool {
			ok, _ := filepath.Match(ex, base)
			return ok
		})
	})
	sort.Strings(paths)
	return paths, nil
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
