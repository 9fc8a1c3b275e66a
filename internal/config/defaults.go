package config

// Defaults for every optional setting. Required settings have no default and
// must come from the config file, the environment, or a CLI flag.
const (
	// DefaultLocalRepoPath is used when no working-tree path is configured.
	DefaultLocalRepoPath = "./cloudmirror-repo"

	DefaultCommitMessage     = "Sync git with iCloud Drive"
	DefaultCommitAuthorName  = "Sync Bot"
	DefaultCommitAuthorEmail = "sync-bot@example.com"

	// DefaultCloudRemoteName is the legacy remote identifier kept for
	// backward compatibility with existing backend configurations.
	DefaultCloudRemoteName = "iclouddrive"
)

// defaultExcludePatterns is the built-in deny-list template protecting VCS
// metadata from being overwritten by a cloud sync. It is never handed out
// directly; DefaultExcludePatterns clones it so every Settings instance owns
// an independent copy.
var defaultExcludePatterns = []string{
	".git/",
	".gitignore",
	".gitattributes",
	".gitmodules",
	".DS_Store",
}

// DefaultExcludePatterns returns a fresh copy of the built-in exclusion set.
func DefaultExcludePatterns() []string {
	out := make([]string, len(defaultExcludePatterns))
	copy(out, defaultExcludePatterns)
	return out
}
