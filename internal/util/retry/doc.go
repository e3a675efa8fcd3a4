// Package retry provides bounded retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max attempts,
// initial delay, and maximum delay. It is used for cloud API calls that may
// fail transiently.
//
// [Policy] is an explicit attempt budget with a fixed (or optionally growing)
// delay between attempts. Waiting goes through a [Clock] so tests can replace
// wall-clock sleeps with a [FakeClock].
package retry
