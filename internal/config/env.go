package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix is the fixed namespace for cloudmirror environment variables.
// Each variable maps 1:1 to a Settings field.
const EnvPrefix = "CLOUDMIRROR_"

const (
	EnvRemoteRepoURL      = EnvPrefix + "GIT_REMOTE_URL"
	EnvGitUsername        = EnvPrefix + "GIT_USERNAME"
	EnvGitAccessToken     = EnvPrefix + "GIT_ACCESS_TOKEN"
	EnvLocalRepoPath      = EnvPrefix + "LOCAL_REPO_PATH"
	EnvCommitMessage      = EnvPrefix + "COMMIT_MESSAGE"
	EnvCommitAuthorName   = EnvPrefix + "COMMIT_AUTHOR_NAME"
	EnvCommitAuthorEmail  = EnvPrefix + "COMMIT_AUTHOR_EMAIL"
	EnvCloudBackendConfig = EnvPrefix + "CLOUD_BACKEND_CONFIG"
	EnvCloudRemoteName    = EnvPrefix + "CLOUD_REMOTE_NAME"
	EnvCloudRemoteFolder  = EnvPrefix + "CLOUD_REMOTE_FOLDER"
	EnvExcludePatterns    = EnvPrefix + "EXCLUDE_PATTERNS"
)

// loadEnvFiles overlays .env/.env.local into the process environment without
// overriding variables that are already set.
func loadEnvFiles() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("Failed to load env file", "path", envPath, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", envPath)
		return
	}
}

func defaultLookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// applyEnv layers CLOUDMIRROR_* variables on top of the current settings.
func applyEnv(s *Settings, extra *[]string, lookup func(string) (string, bool)) {
	envString(lookup, EnvRemoteRepoURL, &s.RemoteRepoURL)
	envString(lookup, EnvGitUsername, &s.GitUsername)
	envString(lookup, EnvGitAccessToken, &s.GitAccessToken)
	envString(lookup, EnvLocalRepoPath, &s.LocalRepoPath)
	envString(lookup, EnvCommitMessage, &s.CommitMessage)
	envString(lookup, EnvCommitAuthorName, &s.CommitAuthorName)
	envString(lookup, EnvCommitAuthorEmail, &s.CommitAuthorEmail)
	envString(lookup, EnvCloudBackendConfig, &s.CloudBackendConfig)
	envString(lookup, EnvCloudRemoteName, &s.CloudRemoteName)
	envString(lookup, EnvCloudRemoteFolder, &s.CloudRemoteFolder)

	if raw, ok := lookup(EnvExcludePatterns); ok {
		*extra = append(*extra, splitPatternList(raw)...)
	}
}

func envString(lookup func(string) (string, bool), key string, dst *string) {
	if value, ok := lookup(key); ok && value != "" {
		*dst = value
	}
}

// splitPatternList parses a comma-separated pattern list, trimming whitespace
// and dropping empty entries.
func splitPatternList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
