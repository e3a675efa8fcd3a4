// Package credentials holds the access credentials issued for provisioned
// instances.
//
// Store is an explicitly constructed, concurrency-safe map from instance name
// to Record. Entries never expire: they are added when an instance is
// confirmed and removed only when the instance is deleted. Names are unique;
// Put on an existing name overwrites, Delete of an absent name is a no-op.
//
// Snapshots let the CLI keep credentials across process runs: SaveFile and
// LoadFile write YAML with owner-only permissions, and S3Exporter copies the
// same document to S3-compatible object storage.
package credentials
