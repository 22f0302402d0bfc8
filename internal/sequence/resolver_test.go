package sequence

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// touch creates an empty file inside dir and returns its path.
func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return path
}

func TestResolveContiguousPaddedRun(t *testing.T) {
	dir := t.TempDir()
	var seed string
	for i := 1; i <= 10; i++ {
		p := touch(t, dir, fmt.Sprintf("frame_%03d.png", i))
		if i == 5 {
			seed = p
		}
	}
	touch(t, dir, "logo.png") // unrelated sibling, must not join the run

	in, err := Resolve(seed)
	require.NoError(t, err)

	assert.True(t, in.IsSequence())
	assert.Equal(t, 10, in.FrameCount())
	assert.Equal(t, "frame", in.Stem)
	assert.Equal(t, 1, in.StartNumber)
	assert.True(t, in.Contiguous)
	assert.Equal(t, filepath.Join(dir, "frame_%03d.png"), in.Pattern)

	// Members sorted by ascending number regardless of directory order.
	for i, f := range in.Frames {
		assert.Equal(t, i+1, f.Number)
	}
}

func TestResolveSeedInMiddleOfRun(t *testing.T) {
	dir := t.TempDir()
	var seed string
	for i := 4; i <= 9; i++ {
		p := touch(t, dir, fmt.Sprintf("shot-%02d.png", i))
		if i == 7 {
			seed = p
		}
	}

	in, err := Resolve(seed)
	require.NoError(t, err)
	assert.True(t, in.IsSequence())
	assert.Equal(t, 6, in.FrameCount())
	assert.Equal(t, 4, in.StartNumber)
	assert.Equal(t, "shot", in.Stem)
}

func TestResolveGappedRunIsNotContiguous(t *testing.T) {
	dir := t.TempDir()
	seed := touch(t, dir, "clip_001.png")
	touch(t, dir, "clip_002.png")
	touch(t, dir, "clip_004.png") // gap at 3

	in, err := Resolve(seed)
	require.NoError(t, err)

	assert.True(t, in.IsSequence())
	assert.Equal(t, 3, in.FrameCount())
	assert.False(t, in.Contiguous, "gapped runs must go through the concat demuxer")
	assert.Empty(t, in.Pattern)
}

func TestResolveMixedPaddingIsNotContiguous(t *testing.T) {
	dir := t.TempDir()
	seed := touch(t, dir, "img_09.png")
	touch(t, dir, "img_010.png") // consecutive numbers, inconsistent width

	in, err := Resolve(seed)
	require.NoError(t, err)
	assert.True(t, in.IsSequence())
	assert.False(t, in.Contiguous)
}

func TestResolveUnpaddedRun(t *testing.T) {
	dir := t.TempDir()
	seed := touch(t, dir, "f8.png")
	touch(t, dir, "f9.png")
	touch(t, dir, "f10.png")

	in, err := Resolve(seed)
	require.NoError(t, err)
	assert.True(t, in.Contiguous)
	assert.Equal(t, filepath.Join(dir, "f%d.png"), in.Pattern)
	assert.Equal(t, 8, in.StartNumber)
}

func TestResolveSingleImageStaysStandalone(t *testing.T) {
	dir := t.TempDir()
	seed := touch(t, dir, "logo.png")
	touch(t, dir, "unrelated.png")

	in, err := Resolve(seed)
	require.NoError(t, err)
	assert.False(t, in.IsSequence())
	assert.Equal(t, "logo", in.Stem)
	assert.Equal(t, seed, in.Path)
}

func TestResolveNoDigitsInName(t *testing.T) {
	dir := t.TempDir()
	seed := touch(t, dir, "poster.png")

	in, err := Resolve(seed)
	require.NoError(t, err)
	assert.False(t, in.IsSequence())
}

func TestResolveDuplicateNumbersFallBack(t *testing.T) {
	dir := t.TempDir()
	seed := touch(t, dir, "a5.png")
	touch(t, dir, "a05.png") // same numeric value, different padding
	touch(t, dir, "a6.png")

	in, err := Resolve(seed)
	require.NoError(t, err)
	assert.False(t, in.IsSequence(), "ambiguous numbering must not form a sequence")
}

func TestResolveUsesRightmostNumericRun(t *testing.T) {
	dir := t.TempDir()
	seed := touch(t, dir, "shot2_take3_0007.png")
	touch(t, dir, "shot2_take3_0008.png")
	touch(t, dir, "shot2_take4_0007.png") // different take, different run

	in, err := Resolve(seed)
	require.NoError(t, err)
	require.True(t, in.IsSequence())
	assert.Equal(t, 2, in.FrameCount())
	assert.Equal(t, "shot2_take3", in.Stem)
	assert.Equal(t, 7, in.StartNumber)
}

func TestResolveShortSiblingWithOverlappingAffixes(t *testing.T) {
	dir := t.TempDir()
	// Seed splits into prefix "ab", digits "1", suffix "ba". The sibling
	// "aba" satisfies both affixes but is shorter than their combined
	// length and must be skipped, not sliced.
	seed := touch(t, dir, "ab1ba.png")
	touch(t, dir, "aba.png")

	in, err := Resolve(seed)
	require.NoError(t, err)
	assert.False(t, in.IsSequence())
	assert.Equal(t, seed, in.Path)
}

func TestResolveIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	seed := touch(t, dir, "frame_001.png")
	touch(t, dir, "frame_002.png")
	touch(t, dir, "frame_003.jpg") // different extension, not a member

	in, err := Resolve(seed)
	require.NoError(t, err)
	require.True(t, in.IsSequence())
	assert.Equal(t, 2, in.FrameCount())
}

func TestSplitNumericRun(t *testing.T) {
	tests := []struct {
		base                    string
		prefix, digits, suffix  string
		ok                      bool
	}{
		{"frame_001", "frame_", "001", "", true},
		{"shot2_take3_0007", "shot2_take3_", "0007", "", true},
		{"0042", "", "0042", "", true},
		{"v2-final", "v", "2", "-final", true},
		{"poster", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			prefix, digits, suffix, ok := SplitNumericRun(tt.base)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.prefix, prefix)
			assert.Equal(t, tt.digits, digits)
			assert.Equal(t, tt.suffix, suffix)
		})
	}
}

func TestVideoInput(t *testing.T) {
	in := Video("/media/holiday.mp4")
	assert.False(t, in.IsSequence())
	assert.Equal(t, "holiday", in.Stem)
	assert.Equal(t, 0, in.FrameCount())
}

func TestStemOfNumericOnlyName(t *testing.T) {
	dir := t.TempDir()
	seed := touch(t, dir, "0001.png")
	touch(t, dir, "0002.png")

	in, err := Resolve(seed)
	require.NoError(t, err)
	require.True(t, in.IsSequence())
	// Purely numeric names keep the seed basename as the stem.
	assert.Equal(t, "0001", in.Stem)
}
