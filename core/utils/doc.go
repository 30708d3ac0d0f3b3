// Package utils provides common utility functions for the archive-manager application.
// It includes filesystem helpers for snapshot directories and JSON export, and other
// shared logic that doesn't fit into domain-specific packages.
package utils
