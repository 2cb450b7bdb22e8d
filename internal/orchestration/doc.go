// Package orchestration coordinates the concurrent execution of per-key
// fetch cycles under a bounded worker pool.
//
// It owns the batch-level correctness guarantees: one record per submitted
// key, bounded in-flight work, monotonic progress reporting, and a fully
// drained pool before control returns to the caller. It deliberately knows
// nothing about how a record is fetched or presented; both sit behind
// interfaces.
package orchestration
