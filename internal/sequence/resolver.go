package sequence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Kind distinguishes the two encodable input shapes.
type Kind int

const (
	KindVideo  Kind = iota // Single video file.
	KindFrames             // Ordered numbered image sequence.
)

// Frame is one member of a detected sequence.
type Frame struct {
	Path   string
	Number int
}

// Input is one concrete encodable unit after sequence detection. It is
// created by Resolve (or Video) and immutable thereafter.
type Input struct {
	Kind Kind

	// Path is the video file for KindVideo, or the seed frame for
	// KindFrames (always a member of Frames).
	Path string

	// Stem is the input's basename without extension; for sequences the
	// numeric run and trailing separators are stripped. Output filenames
	// derive from it.
	Stem string

	// Sequence members ordered by ascending frame number.
	Frames []Frame

	// Pattern is the ffmpeg image2 pattern (prefix%0Nd-suffix form) and
	// StartNumber its first index. Only valid when Contiguous: numbers
	// consecutive and padding uniform. Gapped or mixed-padding runs must go
	// through the concat demuxer instead.
	Pattern     string
	StartNumber int
	Contiguous  bool
}

// IsSequence reports whether the input is a multi-frame image sequence.
func (in *Input) IsSequence() bool { return in.Kind == KindFrames }

// FrameCount returns the number of source frames (0 for videos, where the
// count comes from probing).
func (in *Input) FrameCount() int { return len(in.Frames) }

// Video wraps a plain video path as an Input.
func Video(path string) *Input {
	base := filepath.Base(path)
	return &Input{
		Kind: KindVideo,
		Path: path,
		Stem: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// Resolve inspects the directory of seedPath for sibling files forming a
// numbered sequence with the seed. The result is a KindFrames input when at
// least two files share the seed's prefix/suffix around a numeric run with
// strictly increasing numbers; otherwise the seed is returned as a
// standalone single-file input. Duplicate numeric values (e.g. "5" and
// "05") make the run ambiguous and also fall back to a single file.
func Resolve(seedPath string) (*Input, error) {
	base := filepath.Base(seedPath)
	ext := filepath.Ext(base)
	prefix, _, suffix, ok := SplitNumericRun(strings.TrimSuffix(base, ext))
	if !ok {
		return single(seedPath), nil
	}

	dir := filepath.Dir(seedPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan sequence directory %q: %w", dir, err)
	}

	var frames []Frame
	seen := make(map[int]bool)
	duplicate := false
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}
		mid, ok := matchMember(strings.TrimSuffix(name, filepath.Ext(name)), prefix, suffix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(mid)
		if err != nil {
			continue
		}
		if seen[n] {
			duplicate = true
			break
		}
		seen[n] = true
		frames = append(frames, Frame{Path: filepath.Join(dir, name), Number: n})
	}

	if duplicate || len(frames) < 2 {
		return single(seedPath), nil
	}

	sort.Slice(frames, func(i, j int) bool { return frames[i].Number < frames[j].Number })

	in := &Input{
		Kind:        KindFrames,
		Path:        seedPath,
		Stem:        stemOf(prefix, filepath.Base(seedPath)),
		Frames:      frames,
		StartNumber: frames[0].Number,
	}
	in.Pattern, in.Contiguous = buildPattern(dir, prefix, suffix, ext, frames)
	return in, nil
}

func single(path string) *Input {
	base := filepath.Base(path)
	return &Input{
		Kind: KindVideo,
		Path: path,
		Stem: strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// SplitNumericRun splits a basename (without extension) around its rightmost
// numeric run. ok is false when the name contains no digits, in which case
// the file is a standalone input, not a sequence seed.
func SplitNumericRun(base string) (prefix, digits, suffix string, ok bool) {
	end := -1
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] >= '0' && base[i] <= '9' {
			end = i + 1
			break
		}
	}
	if end < 0 {
		return "", "", "", false
	}
	start := end
	for start > 0 && base[start-1] >= '0' && base[start-1] <= '9' {
		start--
	}
	return base[:start], base[start:end], base[end:], true
}

// matchMember extracts the numeric middle of a candidate basename that
// shares the seed's prefix and suffix. The middle must be all digits.
func matchMember(base, prefix, suffix string) (string, bool) {
	// Prefix and suffix may overlap in a shorter sibling name (seed
	// "ab1ba" next to "aba"), which passes both HasPrefix and HasSuffix.
	if len(base) < len(prefix)+len(suffix) {
		return "", false
	}
	if !strings.HasPrefix(base, prefix) || !strings.HasSuffix(base, suffix) {
		return "", false
	}
	mid := base[len(prefix) : len(base)-len(suffix)]
	if mid == "" {
		return "", false
	}
	for i := 0; i < len(mid); i++ {
		if mid[i] < '0' || mid[i] > '9' {
			return "", false
		}
	}
	return mid, true
}

// buildPattern derives the ffmpeg image2 pattern for the run. The pattern
// form only works when the numbers are consecutive and either uniformly
// zero-padded (%0Nd) or unpadded (%d); anything else reports contiguous=false.
func buildPattern(dir, prefix, suffix, ext string, frames []Frame) (string, bool) {
	for i := 1; i < len(frames); i++ {
		if frames[i].Number != frames[i-1].Number+1 {
			return "", false
		}
	}

	width := numericWidth(frames[0].Path)
	uniform := true
	padded := false
	for _, f := range frames {
		w := numericWidth(f.Path)
		if w != width {
			uniform = false
		}
		if w > len(strconv.Itoa(f.Number)) {
			padded = true
		}
	}

	var verb string
	switch {
	case uniform && padded:
		verb = fmt.Sprintf("%%0%dd", width)
	case !padded:
		verb = "%d"
	default:
		return "", false
	}
	return filepath.Join(dir, prefix+verb+suffix+ext), true
}

// numericWidth returns the digit-run width of a member path's basename.
func numericWidth(path string) int {
	base := filepath.Base(path)
	_, digits, _, _ := SplitNumericRun(strings.TrimSuffix(base, filepath.Ext(base)))
	return len(digits)
}

// stemOf derives the output stem for a sequence: the prefix with trailing
// separators trimmed, falling back to the seed basename when the prefix is
// empty (purely numeric filenames).
func stemOf(prefix, seedBase string) string {
	stem := strings.TrimRight(prefix, "-_. ")
	if stem != "" {
		return stem
	}
	return strings.TrimSuffix(seedBase, filepath.Ext(seedBase))
}
