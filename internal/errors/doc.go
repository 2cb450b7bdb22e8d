// Package apperrors defines the error taxonomy and process exit codes for
// resultgrab.
//
// Per-key failures (MechanismError) and per-file failures (UploadError) are
// data: they are carried on records and outcome lists, never propagated as
// batch errors. ScheduleError is the single run-fatal condition.
package apperrors
