// Package probe extracts stream metadata (dimensions, frame rate, frame
// count, duration) from a single input via ffprobe.
//
// One JSON ffprobe call covers the common case; a second -count_frames call
// is made only when the container does not report nb_frames, and a
// fps×duration estimate is the final fallback. A zero TotalFrames means the
// count is genuinely unknown and progress for that input is indeterminate.
package probe
