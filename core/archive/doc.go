// Package archive provides a typed HTTP client for the archive's record API.
//
// The archive is an Invenio-style repository: records are created as drafts,
// files are registered and uploaded against the draft, and publishing freezes
// the version. The Client interface covers exactly the operations the record
// workflows need, which keeps it easy to mock for unit testing (see
// core/archive/mocks).
//
// # Documents
//
// The archive's metadata schema is open-ended, so request and response
// bodies are passed around as Document (a raw JSON object) with accessors
// for the handful of fields the workflows branch on (id, is_published,
// metadata.title).
//
// # Errors
//
// Non-2xx responses are returned as *StatusError carrying the HTTP status
// code, so callers can branch on the class of failure with errors.As or
// IsStatus instead of matching message strings. Transport failures are
// wrapped with the endpoint that was being called.
//
// # Usage
//
//	client := archive.NewClient(cfg.Archive)
//	draft, err := client.CreateVersion(ctx, "pxrf9-zfh45")
//	if archive.IsStatus(err, http.StatusNotFound) {
//	    // unknown record id
//	}
package archive
