// Package reconcile decides how a record version's linked files must
// change to match a local directory of data files.
//
// Both sides are described by an Inventory of (name, checksum) pairs:
// the remote side lists the files linked to a draft, the local side the
// files in the upload directory. All comparisons operate on the pair,
// not the name alone, so unchanged files are neither re-uploaded nor
// needlessly unlinked.
//
// # Decision rules
//
// Given a remote and a local inventory, the engine computes:
//
//   - changed-content files: linked names for which exactly one local
//     file has the same name but different content. These are always
//     re-synced; a stale link under the same name is never kept.
//   - missing files: linked (name, checksum) pairs with no equal pair
//     locally. They are pruned only when the force option is set,
//     which lets a partial local directory extend a version instead of
//     replacing it.
//   - files to upload: local pairs with no equal pair remotely.
//
// BuildPlan combines the rules into a Plan of sorted name sets
// (ToDelete, ToImport, ToUpload) plus summary counts. The plan is pure
// data: executing it against the archive is the caller's job, which
// keeps the decision logic trivially testable.
//
// # Ambiguity
//
// When more than one same-named, different-content local candidate
// matches a link, the engine excludes the name from changed-content
// detection rather than guessing. No error is raised; with force the
// link can still be pruned through the missing-files rule.
//
// # Usage
//
//	local, err := reconcile.LocalInventory("data/input/upload")
//	remote, err := reconcile.RemoteInventory(ctx, client, recordID)
//	plan := reconcile.BuildPlan(remote, local, reconcile.Options{Force: true})
//	for _, name := range plan.ToDelete { ... }
//
// Inventories are computed freshly per invocation and never cached; the
// archive is the sole system of record.
package reconcile
