// Package labels provides consistent labeling for provisioned instances.
//
// The same label set is applied as Hetzner Cloud labels and as EC2 tags so
// instances of one cluster can be listed and cleaned up on every backend.
package labels
