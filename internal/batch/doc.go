// Package batch drives planned conversion jobs through the ffmpeg runner:
// sequential by default, optionally with a bounded worker pool, honoring
// cooperative pause/cancel between jobs and at fixed intervals within them.
//
// One Handle owns one batch: its control signal is created at submit and
// never shared with another batch, so a stale pause or cancel from an
// earlier run can not leak into a new one.
package batch
