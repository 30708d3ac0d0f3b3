package reconcile

import "sort"

// Plan is the reconciliation output that drives a version transition.
// The three name sets are deduplicated and sorted for deterministic
// reporting and execution order.
type Plan struct {
	// ToDelete lists link names to remove from the draft.
	ToDelete []string `json:"to_delete"`

	// ToImport lists link names kept unchanged from the previous
	// version after deletion.
	ToImport []string `json:"to_import"`

	// ToUpload lists local file names whose content must be uploaded
	// and linked.
	ToUpload []string `json:"to_upload"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a reconcile plan.
type PlanSummary struct {
	// RemoteLinks is the number of links on the draft before reconciliation.
	RemoteLinks int `json:"remote_links"`

	// LocalFiles is the number of files in the local directory.
	LocalFiles int `json:"local_files"`

	// Changed counts remote links whose local counterpart has different
	// content.
	Changed int `json:"changed"`

	// Missing counts remote links with no unchanged local counterpart.
	Missing int `json:"missing"`

	// Deletions counts planned link removals.
	Deletions int `json:"deletions"`

	// Imports counts links kept from the previous version.
	Imports int `json:"imports"`

	// Uploads counts planned content uploads.
	Uploads int `json:"uploads"`
}

// BuildPlan computes the full reconciliation plan for a draft whose link
// set is remote and whose local directory is local.
//
// A changed-content file appears in both ToDelete and ToUpload: its
// stale link is removed and its new content uploaded under the same
// name. ToImport and ToUpload are disjoint by construction.
func BuildPlan(remote, local Inventory, opts Options) Plan {
	changed := ChangedContentFiles(remote, local)
	missing := MissingFiles(remote, local)

	toDelete := append([]string{}, changed...)
	if opts.Force {
		toDelete = append(toDelete, missing...)
	}
	sorted := sortedSet(toDelete)

	deleted := make(map[string]struct{}, len(sorted))
	for _, name := range sorted {
		deleted[name] = struct{}{}
	}

	toImport := make([]string, 0, len(remote))
	for _, link := range remote {
		if _, gone := deleted[link.Name]; !gone {
			toImport = append(toImport, link.Name)
		}
	}

	plan := Plan{
		ToDelete: sorted,
		ToImport: sortedSet(toImport),
		ToUpload: sortedSet(FilesToUpload(remote, local)),
	}
	plan.Summary = PlanSummary{
		RemoteLinks: len(remote),
		LocalFiles:  len(local),
		Changed:     len(changed),
		Missing:     len(missing),
		Deletions:   len(plan.ToDelete),
		Imports:     len(plan.ToImport),
		Uploads:     len(plan.ToUpload),
	}
	return plan
}

// IsNoop reports whether the plan requires no remote mutations.
func (p Plan) IsNoop() bool {
	return len(p.ToDelete) == 0 && len(p.ToUpload) == 0
}

// sortedSet deduplicates and sorts a list of names.
func sortedSet(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
