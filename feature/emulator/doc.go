// Package emulator implements a self-contained archive server speaking
// the subset of the archive REST API the client consumes.
//
// It emulates the record lifecycle of a research-data archive: draft
// creation, metadata updates, file registration with server-side
// checksums, importing files from the previous published version,
// publishing, and the record/user search listings. Records and file
// links live in a SQL database through GORM; file content lives in a
// pluggable content store, either in memory or in an S3-compatible
// bucket.
//
// The emulator serves two purposes: a local development target for the
// CLI and an end-to-end test bed for the client and the record
// synchronization flows.
package emulator
