// Package backup copies the database of a lab automation server into a
// published archive record.
//
// A run snapshots the lab server's capabilities, requests, and results
// into JSON files inside a staging directory, then either creates a new
// archive entry (first backup) or adds a published version to the entry
// of the previous backup. Safety prompts guard the two ambiguous cases:
// creating a second entry with a title that is already published, and
// updating a record whose title differs from the metadata file.
package backup
