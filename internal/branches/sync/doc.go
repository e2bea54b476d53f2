// Package sync drives one or more Git repositories onto a target branch.
//
// The Service synchronizes a single repository through a fixed sequence of
// checks and git operations, the Orchestrator applies it to a batch, and the
// CommandBuilder exposes the workflow as the branch-sync CLI command.
package sync
