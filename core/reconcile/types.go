package reconcile

// FileRecord identifies one file's content at a point in time, either in
// the local upload directory or linked to a remote draft.
// Two FileRecords are equal iff both name and checksum match.
type FileRecord struct {
	// Name is the case-sensitive file name, unique within an inventory.
	Name string `json:"name"`

	// Checksum is the content fingerprint ("md5:<hex>"), treated as an
	// opaque comparison token.
	Checksum string `json:"checksum"`
}

// Inventory is an ordered collection of FileRecords describing one side
// of a reconciliation: the local directory or the remote link set.
type Inventory []FileRecord

// Contains reports whether the inventory holds an equal (name, checksum)
// pair.
func (inv Inventory) Contains(r FileRecord) bool {
	for _, f := range inv {
		if f == r {
			return true
		}
	}
	return false
}

// Names returns the file names in inventory order.
func (inv Inventory) Names() []string {
	names := make([]string, 0, len(inv))
	for _, f := range inv {
		names = append(names, f.Name)
	}
	return names
}

// Options controls reconciliation behavior.
type Options struct {
	// Force prunes remote links whose files are absent from the local
	// directory. Without it such links are kept, so a partial local
	// directory extends the previous version's file set instead of
	// replacing it.
	Force bool
}
