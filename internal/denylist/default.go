package denylist

// DefaultPatterns contains the built-in vocabulary.
// Matching is a substring test; case handling is decided by the caller.
var DefaultPatterns = Patterns{
	Traversal: []string{
		"..",
	},
	Destructive: []string{
		"delete",
		"rm -rf",
		"rmdir",
		"unlink",
		"shred",
	},
}
