package planner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Supported video extensions (lowercase, with leading dot).
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".m4v":  true,
	".mpg":  true,
	".mpeg": true,
}

// Image extensions accepted as sequence seeds.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// IsVideo reports whether path has a supported video extension.
func IsVideo(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsImage reports whether path has a supported image extension.
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Discover expands the user's path arguments into concrete input files.
// File arguments pass through as-is; directory arguments are walked for
// video files, sorted lexicographically for deterministic order. Image
// files inside directories are ignored — sequences are only picked up from
// an explicit seed frame.
func Discover(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		matches, err := expandArg(arg)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, matches...)
	}
	return inputs, nil
}

func expandArg(arg string) ([]string, error) {
	// Tolerate shell-unexpanded globs: an arg that is not itself a path
	// but matches one is expanded, even to a single file.
	if _, err := os.Lstat(arg); err != nil {
		matches, globErr := filepath.Glob(arg)
		if globErr == nil && len(matches) > 0 {
			sort.Strings(matches)
			return matches, nil
		}
	}

	var files []string
	walkErr := filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if path == arg || IsVideo(path) {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	sort.Strings(files)
	return files, nil
}
