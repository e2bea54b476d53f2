// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// It exposes RepositoryManager for inspecting branches and working tree status
// and for the checkout, fetch, reset, and pull operations the branch
// synchronizer composes into its pipeline.
package gitrepo
