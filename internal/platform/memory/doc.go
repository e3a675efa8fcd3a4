// Package memory provides an in-process compute backend.
//
// The backend keeps instances in a map, assigns unique private addresses and
// serves the join artifact for manager instances through Dialer, so a full
// cluster run can be exercised without a cloud account. It is used by the
// CLI's --dry-run mode and by tests, which can inject failures and inspect
// the specs the backend received.
package memory
