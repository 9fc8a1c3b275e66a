// Package git wraps the go-git primitives cloudmirror needs: clone,
// fetch + fast-forward update, stage/commit, and push.
//
// The package exposes a narrow adapter so the pipeline depends only on
// abstract operations:
//   - EnsureCloned: clone if the working tree is absent, no-op otherwise
//   - Update: fetch and fast-forward, never an implicit clone, never a forced
//     resolution of divergent history
//   - CommitAndPush: stage everything outside the exclusion deny-list, commit
//     only a dirty tree, push the current branch
//
// All failures are classified errors; divergence surfaces as a typed
// RemoteDivergedError wrapped in the git category.
package git
