// Package config resolves cloudmirror settings from an optional YAML file, the
// CLOUDMIRROR_* environment namespace, and CLI flag overrides, in that order of
// increasing precedence. Resolution is atomic: either a fully validated
// Settings is returned, or a configuration error naming every missing required
// field.
package config

import (
	"fmt"
	"sort"
	"strings"

	fnderr "git.home.luguber.info/inful/cloudmirror/internal/foundation/errors"
)

// Settings is the immutable result of configuration resolution. It is
// constructed once per process invocation and never mutated afterwards.
type Settings struct {
	RemoteRepoURL  string
	GitUsername    string
	GitAccessToken string // secret
	LocalRepoPath  string

	CommitMessage     string
	CommitAuthorName  string
	CommitAuthorEmail string

	CloudBackendConfig string // secret, opaque blob handed to the sync tool
	CloudRemoteName    string
	CloudRemoteFolder  string

	// ExcludePatterns always starts from a fresh copy of the built-in set;
	// user patterns are appended after it.
	ExcludePatterns []string

	// Verbose only widens diagnostic output, never control flow.
	Verbose bool
}

// Overrides carries explicit CLI values. Empty strings and nil slices mean
// "not set on the command line".
type Overrides struct {
	RemoteRepoURL      string
	GitUsername        string
	GitAccessToken     string
	LocalRepoPath      string
	CommitMessage      string
	CommitAuthorName   string
	CommitAuthorEmail  string
	CloudBackendConfig string
	CloudRemoteName    string
	CloudRemoteFolder  string
	ExcludePatterns    []string
	Verbose            bool
}

// ResolveOptions controls where Resolve reads its sources from.
type ResolveOptions struct {
	// ConfigFile is an optional YAML settings file (lowest precedence).
	ConfigFile string
	// LookupEnv defaults to os.LookupEnv; injectable for tests.
	LookupEnv func(key string) (string, bool)
	// Overrides are explicit CLI values (highest precedence).
	Overrides Overrides
}

// Resolve merges the configured sources into a validated Settings.
func Resolve(opts ResolveOptions) (*Settings, error) {
	lookup := opts.LookupEnv
	if lookup == nil {
		loadEnvFiles()
		lookup = defaultLookupEnv
	}

	s := &Settings{
		LocalRepoPath:     DefaultLocalRepoPath,
		CommitMessage:     DefaultCommitMessage,
		CommitAuthorName:  DefaultCommitAuthorName,
		CommitAuthorEmail: DefaultCommitAuthorEmail,
		CloudRemoteName:   DefaultCloudRemoteName,
		ExcludePatterns:   DefaultExcludePatterns(),
	}

	var extraPatterns []string

	if opts.ConfigFile != "" {
		file, err := loadFile(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		file.apply(s, &extraPatterns)
	}

	applyEnv(s, &extraPatterns, lookup)
	applyOverrides(s, &extraPatterns, opts.Overrides)

	s.ExcludePatterns = append(s.ExcludePatterns, extraPatterns...)

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// applyOverrides layers CLI values on top of the current settings.
func applyOverrides(s *Settings, extra *[]string, o Overrides) {
	setString(&s.RemoteRepoURL, o.RemoteRepoURL)
	setString(&s.GitUsername, o.GitUsername)
	setString(&s.GitAccessToken, o.GitAccessToken)
	setString(&s.LocalRepoPath, o.LocalRepoPath)
	setString(&s.CommitMessage, o.CommitMessage)
	setString(&s.CommitAuthorName, o.CommitAuthorName)
	setString(&s.CommitAuthorEmail, o.CommitAuthorEmail)
	setString(&s.CloudBackendConfig, o.CloudBackendConfig)
	setString(&s.CloudRemoteName, o.CloudRemoteName)
	setString(&s.CloudRemoteFolder, o.CloudRemoteFolder)
	if len(o.ExcludePatterns) > 0 {
		*extra = append(*extra, o.ExcludePatterns...)
	}
	if o.Verbose {
		s.Verbose = true
	}
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// validate checks every required field and fails with a single error naming
// all missing fields so the operator can fix the environment in one pass.
func (s *Settings) validate() error {
	missing := make([]string, 0, 5)
	required := map[string]string{
		"remote_repo_url":      s.RemoteRepoURL,
		"git_username":         s.GitUsername,
		"git_access_token":     s.GitAccessToken,
		"cloud_backend_config": s.CloudBackendConfig,
		"cloud_remote_folder":  s.CloudRemoteFolder,
	}
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fnderr.ConfigError(fmt.Sprintf("missing required settings: %s", strings.Join(missing, ", "))).
		WithContext("missing", missing).
		Build()
}

// MissingFields extracts the missing-field names from a resolution error, if
// any. Used by tests and diagnostics.
func MissingFields(err error) []string {
	classified, ok := fnderr.AsClassified(err)
	if !ok {
		return nil
	}
	value, ok := classified.Context().Get("missing")
	if !ok {
		return nil
	}
	fields, _ := value.([]string)
	return fields
}

// String renders the settings for diagnostics. Secrets are masked, never
// printed in full.
func (s *Settings) String() string {
	return fmt.Sprintf(
		"Settings{remote_repo_url:%q git_username:%q git_access_token:%q local_repo_path:%q commit_message:%q commit_author:%q <%s> cloud_backend_config:%q cloud_remote:%q folder:%q exclude_patterns:%d verbose:%t}",
		s.RemoteRepoURL, s.GitUsername, MaskSecret(s.GitAccessToken), s.LocalRepoPath,
		s.CommitMessage, s.CommitAuthorName, s.CommitAuthorEmail,
		MaskSecret(s.CloudBackendConfig), s.CloudRemoteName, s.CloudRemoteFolder,
		len(s.ExcludePatterns), s.Verbose,
	)
}

// MaskSecret keeps the first and last two characters of long secrets and fully
// redacts anything short enough that partial disclosure would reveal it.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) < 10 {
		return "********"
	}
	return secret[:2] + "****" + secret[len(secret)-2:]
}
