package git

import (
	"fmt"
	"strings"

	fnderr "git.home.luguber.info/inful/cloudmirror/internal/foundation/errors"
)

// RemoteDivergedError signals that the local branch and its remote have
// divergent history. cloudmirror never force-resolves this.
type RemoteDivergedError struct {
	Op     string
	URL    string
	Branch string
	Err    error
}

func (e *RemoteDivergedError) Error() string {
	return fmt.Sprintf("%s remote diverged %s@%s: %v", e.Op, e.URL, e.Branch, e.Err)
}

func (e *RemoteDivergedError) Unwrap() error { return e.Err }

// ClassifyGitError translates go-git errors into classified errors. Already
// classified errors pass through untouched. The URL lands in context but
// credentials never do; go-git basic-auth failures do not embed the password.
func ClassifyGitError(err error, op, url string) error {
	if err == nil {
		return nil
	}
	if _, ok := fnderr.AsClassified(err); ok {
		return err
	}

	builder := fnderr.GitError("git operation failed").
		WithCause(err).
		WithContext("op", op).
		WithContext("url", url)

	l := strings.ToLower(err.Error())
	switch {
	case strings.Contains(l, "authentication required") || strings.Contains(l, "authorization failed") || strings.Contains(l, "invalid credentials") || strings.Contains(l, "authentication failed"):
		builder.WithCategory(fnderr.CategoryAuth).UserAction()
	case strings.Contains(l, "repository not found") || strings.Contains(l, "does not exist"):
		builder.WithCategory(fnderr.CategoryNotFound).WithRetry(fnderr.RetryNever)
	case strings.Contains(l, "connection refused") || strings.Contains(l, "connection reset") || strings.Contains(l, "timeout") || strings.Contains(l, "no route to host") || strings.Contains(l, "temporary failure"):
		builder.WithCategory(fnderr.CategoryNetwork)
	case strings.Contains(l, "non-fast-forward") || strings.Contains(l, "diverged"):
		builder.WithContext("diverged", true).WithRetry(fnderr.RetryUserAction)
	}
	return builder.Build()
}
