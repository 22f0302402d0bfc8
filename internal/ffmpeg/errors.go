package ffmpeg

import (
	"fmt"
	"regexp"
	"strings"
)

// tailLines is how many trailing stderr lines are kept for diagnostics.
const tailLines = 20

// EncodeError is returned when the encoder subprocess exits non-zero. It
// carries the exit code and the last captured stderr lines; any partially
// written output file is left in place for inspection. Encodes are never
// retried.
type EncodeError struct {
	ExitCode int
	Reason   string   // Short classification, empty when unrecognized.
	Tail     []string // Last stderr lines, oldest first.
}

func (e *EncodeError) Error() string {
	msg := fmt.Sprintf("ffmpeg exited with code %d", e.ExitCode)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// TailString joins the captured stderr tail for display.
func (e *EncodeError) TailString() string {
	return strings.Join(e.Tail, "\n")
}

// Pre-compiled regexes classifying ffmpeg stderr into short human-readable
// reasons. Checked in order; the first match wins. Classification is
// diagnostic only — it never triggers a retry.
var stderrPatterns = []struct {
	re     *regexp.Regexp
	reason string
}{
	{regexp.MustCompile(`(?i)no such file or directory`), "input file not found"},
	{regexp.MustCompile(`(?i)permission denied`), "permission denied"},
	{regexp.MustCompile(`(?i)(width|height) not divisible by`), "odd output dimensions rejected by encoder"},
	{regexp.MustCompile(`(?i)invalid argument|error initializing filter|no such filter`), "invalid filter expression"},
	{regexp.MustCompile(`(?i)unknown encoder|unable to find a suitable output format|muxer not found`), "encoder or muxer unavailable in this ffmpeg build"},
	{regexp.MustCompile(`(?i)invalid data found when processing input|moov atom not found`), "input is corrupt or not a supported media file"},
	{regexp.MustCompile(`(?i)no space left on device`), "output device full"},
}

// Classify maps captured stderr to a short reason string, or empty when no
// known pattern matches.
func Classify(stderr []string) string {
	joined := strings.Join(stderr, "\n")
	for _, p := range stderrPatterns {
		if p.re.MatchString(joined) {
			return p.reason
		}
	}
	return ""
}

// tailBuffer keeps the last tailLines lines written to it.
type tailBuffer struct {
	lines []string
}

func (b *tailBuffer) add(line string) {
	if line == "" {
		return
	}
	b.lines = append(b.lines, line)
	if len(b.lines) > tailLines {
		b.lines = b.lines[len(b.lines)-tailLines:]
	}
}
