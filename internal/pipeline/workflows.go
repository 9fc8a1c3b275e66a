package pipeline

import (
	"fmt"

	fnderr "git.home.luguber.info/inful/cloudmirror/internal/foundation/errors"
)

// StepID identifies one idempotent unit of work.
type StepID string

const (
	StepEnsureCloned StepID = "ensure_cloned"
	StepUpdate       StepID = "update"
	StepCloudSync    StepID = "cloud_sync"
	StepShowChanges  StepID = "show_changes"
	StepCommitPush   StepID = "commit_and_push"
)

// Workflow names an ordered composition of steps.
type Workflow string

const (
	WorkflowAll    Workflow = "all"
	WorkflowClone  Workflow = "clone"
	WorkflowUpdate Workflow = "update"
	WorkflowSync   Workflow = "sync"
)

// workflows maps each workflow name to its ordered step list. show_changes is
// diagnostic only and can never fail a run.
var workflows = map[Workflow][]StepID{
	WorkflowClone:  {StepEnsureCloned},
	WorkflowUpdate: {StepUpdate},
	WorkflowSync:   {StepCloudSync},
	WorkflowAll:    {StepEnsureCloned, StepCloudSync, StepShowChanges, StepCommitPush},
}

// ParseWorkflow validates a workflow name. An unrecognized name is a
// configuration-time validation error, not a runtime pipeline failure.
func ParseWorkflow(name string) (Workflow, error) {
	w := Workflow(name)
	if _, ok := workflows[w]; !ok {
		return "", fnderr.ValidationError(fmt.Sprintf("unknown workflow %q (valid: all, clone, update, sync)", name)).
			WithContext("workflow", name).
			Build()
	}
	return w, nil
}

// Steps returns the ordered step list for a workflow.
func Steps(w Workflow) []StepID {
	steps := workflows[w]
	out := make([]StepID, len(steps))
	copy(out, steps)
	return out
}
