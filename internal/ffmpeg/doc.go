// Package ffmpeg builds and executes the external encoder command for one
// conversion job.
//
// The argument vector is constructed deterministically from the job's
// parameters, the subprocess's -progress stream is mapped to a normalized
// fraction, and a graceful-then-forced terminate hook is exposed for
// cancellation. The encoder itself is a black box; this package never
// inspects or rewrites its output files.
package ffmpeg
