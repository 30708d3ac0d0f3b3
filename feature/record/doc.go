// Package record implements the record lifecycle feature.
//
// It drives the version transitions of archive entries: creating a first
// version from a metadata file and a directory of data files, updating the
// metadata of a published version in place, and creating a new version
// whose file links are reconciled against the local upload directory.
//
// # Version Transitions
//
// A same-version update creates a draft under the same id, replaces its
// metadata and republishes. A new-version update runs the full transition:
//  1. Create the new version draft (new id).
//  2. Replace the draft metadata from the metadata file.
//  3. Clear pre-populated links, then import all links from the published
//     version (the archive reuses stored content instead of re-transferring).
//  4. Reconcile the imported links against the upload directory via
//     core/reconcile and delete the planned links.
//  5. Upload the planned files: one batch registration, then content and
//     commit per file.
//  6. Optionally stamp the publication date and publish.
//
// Any remote failure aborts the transition; the draft keeps its partial
// state for the operator to inspect.
//
// # Components
//
//   - Service: Orchestrates the transitions on top of core/archive.
//   - Metadata: YAML loading and the archive payload envelope.
//   - Export: JSON export of retrieved metadata to an output file.
package record
