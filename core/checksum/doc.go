// Package checksum computes content fingerprints in the archive's format.
//
// The archive identifies file content by an MD5 digest rendered as
// "md5:<hex>". Local files must be fingerprinted in exactly the same format
// so that local and remote inventories can be compared pair-wise without
// normalization.
//
// # Usage
//
//	sum, err := checksum.File("data/input/upload/results.json")
//	// sum == "md5:9a0364b9e99bb480dd25e1f0284c8555"
package checksum
