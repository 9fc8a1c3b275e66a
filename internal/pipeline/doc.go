// Package pipeline composes named, idempotent steps into workflows and runs
// them strictly in order, halting at the first failure.
//
// Workflows are tagged definitions: an ordered list of step identifiers per
// workflow name, interpreted by one generic runner. Adding a step means adding
// an identifier and a case in the step dispatcher, not a new type.
package pipeline
