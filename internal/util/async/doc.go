// Package async provides utilities for parallel task execution with
// per-task outcome collection.
//
// [RunAll] starts every task concurrently and waits for all of them. A task
// failing or panicking never cancels or short-circuits its siblings; each
// outcome is reported in input order. [RunParallel] is the convenience form
// that reduces those outcomes to the first error.
package async
