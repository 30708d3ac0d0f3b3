// Package models defines the database schema of the archive emulator.
//
// Records and file links are stored as GORM models in the
// 'archive_records' and 'archive_files' tables. A record row is one
// version of an entry; rows of the same entry share a parent id. File
// content is not stored here, only its name, checksum, and the key of
// the content object in the configured content store.
package models
