// Package s3 provides a client for S3-compatible object storage.
//
// It is used to export credential snapshots off the machine that ran a
// cluster-create. Endpoints may be AWS itself, Hetzner Object Storage or any
// other S3-compatible service.
package s3
