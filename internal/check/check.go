// Package check provides system diagnostics (--check mode) and pre-batch
// dependency validation (CheckDeps) for ffmpeg, ffprobe, and the gif, apng,
// and image2 muxers the conversion jobs rely on.
package check

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Sentinel errors returned by CheckDeps when a required tool or muxer is missing.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH")
	ErrGIFEncodeFailed = errors.New("gif test encode failed")
)

// RunCheck runs the interactive --check flow: prints availability of ffmpeg,
// ffprobe, and each output muxer via a short synthetic encode. This is
// informational only, it does not stop on failure.
func RunCheck(log zerolog.Logger) {
	log.Info().Msg("=== System Check ===")

	checkFfmpeg(log)
	checkFfprobe(log)
	checkMuxer(log, "gif", gifTestArgs())
	checkMuxer(log, "apng", apngTestArgs())
	checkMuxer(log, "png sequence", pngSeqTestArgs())
}

// checkFfmpeg verifies ffmpeg is on PATH and logs its version string.
func checkFfmpeg(log zerolog.Logger) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		log.Error().Msg("ffmpeg not found")
		return
	}
	cmd := exec.Command("ffmpeg", "-version")
	out, err := cmd.Output()
	if err != nil {
		log.Warn().Err(err).Msg("ffmpeg found but -version failed")
		return
	}
	log.Info().Str("version", firstLine(string(out))).Msg("ffmpeg")
}

// checkFfprobe verifies ffprobe is on PATH and logs its version string.
func checkFfprobe(log zerolog.Logger) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		log.Error().Msg("ffprobe not found")
		return
	}
	cmd := exec.Command("ffprobe", "-version")
	out, err := cmd.Output()
	if err != nil {
		log.Warn().Err(err).Msg("ffprobe found but -version failed")
		return
	}
	log.Info().Str("version", firstLine(string(out))).Msg("ffprobe")
}

// checkMuxer runs one synthetic test encode and logs the result.
func checkMuxer(log zerolog.Logger, name string, args []string) {
	if runSilent("ffmpeg", args...) {
		log.Info().Str("muxer", name).Msg("test encode ok")
	} else {
		log.Error().Str("muxer", name).Msg("test encode failed")
	}
}

// CheckDeps is the pre-batch validation: it verifies that ffmpeg and ffprobe
// are on PATH and that a quick gif encode succeeds. Returns a sentinel error
// on failure.
func CheckDeps() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return ErrFfprobeNotFound
	}
	if !runSilent("ffmpeg", gifTestArgs()...) {
		return ErrGIFEncodeFailed
	}
	return nil
}

// --- internal helpers ---

// gifTestArgs returns the ffmpeg arguments for a minimal gif test encode.
// Shared by RunCheck and CheckDeps to avoid duplicating the argument list.
func gifTestArgs() []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=64x64:d=0.1",
		"-f", "gif", "-frames:v", "2", "-",
	}
}

// apngTestArgs returns the arguments for a minimal apng test encode.
func apngTestArgs() []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=64x64:d=0.1",
		"-f", "apng", "-frames:v", "2", "-",
	}
}

// pngSeqTestArgs returns the arguments for a minimal image2 test encode.
// Writing to the null muxer keeps the check filesystem-free.
func pngSeqTestArgs() []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=64x64:d=0.1",
		"-c:v", "png", "-f", "null", "-",
	}
}

// firstLine returns the first line of s, trimmed.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n"); idx > 0 {
		s = s[:idx]
	}
	return s
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(name string, args ...string) bool {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
