package config

import (
	"os"

	"gopkg.in/yaml.v3"

	fnderr "git.home.luguber.info/inful/cloudmirror/internal/foundation/errors"
)

// fileSettings mirrors the optional YAML configuration file. Every field is
// optional; the file sits below environment variables and CLI flags in
// precedence.
type fileSettings struct {
	Git struct {
		RemoteURL   string `yaml:"remote_url"`
		Username    string `yaml:"username"`
		AccessToken string `yaml:"access_token"`
		RepoPath    string `yaml:"repo_path"`
	} `yaml:"git"`
	Commit struct {
		Message     string `yaml:"message"`
		AuthorName  string `yaml:"author_name"`
		AuthorEmail string `yaml:"author_email"`
	} `yaml:"commit"`
	Cloud struct {
		BackendConfig string `yaml:"backend_config"`
		RemoteName    string `yaml:"remote_name"`
		RemoteFolder  string `yaml:"remote_folder"`
	} `yaml:"cloud"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
}

// loadFile parses the YAML configuration file. A missing file is a
// configuration error because the caller asked for it explicitly.
func loadFile(path string) (*fileSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fnderr.ConfigError("failed to read config file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	var fs fileSettings
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, fnderr.ConfigError("failed to parse config file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return &fs, nil
}

// apply layers file values onto the defaults.
func (f *fileSettings) apply(s *Settings, extra *[]string) {
	setString(&s.RemoteRepoURL, f.Git.RemoteURL)
	setString(&s.GitUsername, f.Git.Username)
	setString(&s.GitAccessToken, f.Git.AccessToken)
	setString(&s.LocalRepoPath, f.Git.RepoPath)
	setString(&s.CommitMessage, f.Commit.Message)
	setString(&s.CommitAuthorName, f.Commit.AuthorName)
	setString(&s.CommitAuthorEmail, f.Commit.AuthorEmail)
	setString(&s.CloudBackendConfig, f.Cloud.BackendConfig)
	setString(&s.CloudRemoteName, f.Cloud.RemoteName)
	setString(&s.CloudRemoteFolder, f.Cloud.RemoteFolder)
	if len(f.ExcludePatterns) > 0 {
		*extra = append(*extra, f.ExcludePatterns...)
	}
}
