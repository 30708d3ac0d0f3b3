package reconcile

// ChangedContentFiles returns the names linked remotely for which the
// local directory holds exactly one same-named file with different
// content. A name with several same-named, different-content local
// candidates is ambiguous and excluded from the result: the engine
// resolves ambiguity by exclusion, never by guessing which candidate
// should replace the link.
func ChangedContentFiles(remote, local Inventory) []string {
	var names []string
	for _, link := range remote {
		candidates := 0
		for _, f := range local {
			if f.Name == link.Name && f.Checksum != link.Checksum {
				candidates++
			}
		}
		if candidates == 1 {
			names = append(names, link.Name)
		}
	}
	return names
}

// MissingFiles returns the names of remote links with no equal
// (name, checksum) pair in the local inventory. The difference is taken
// on the pair, not the name alone, so a same-named file with changed
// content also counts as missing.
func MissingFiles(remote, local Inventory) []string {
	var names []string
	for _, link := range remote {
		if !local.Contains(link) {
			names = append(names, link.Name)
		}
	}
	return names
}

// FilesToUpload returns the names of local files with no equal
// (name, checksum) pair in the remote inventory, computed symmetrically
// to MissingFiles. Files already linked unchanged are never re-uploaded.
func FilesToUpload(remote, local Inventory) []string {
	var names []string
	for _, f := range local {
		if !remote.Contains(f) {
			names = append(names, f.Name)
		}
	}
	return names
}

// LinksToDelete returns the link names to remove from a draft: always
// the changed-content files, plus the missing files when force is set.
// The result is deduplicated and sorted.
func LinksToDelete(remote, local Inventory, force bool) []string {
	names := ChangedContentFiles(remote, local)
	if force {
		names = append(names, MissingFiles(remote, local)...)
	}
	return sortedSet(names)
}
