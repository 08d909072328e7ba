// Package svc holds the reconciliation logic of vvpctl.
//
// Subpackages:
//   - loader: reads deployment documents from files, directories and stdin
//   - fetcher: reads the live deployment, treating a missing one as empty
//   - tree: normalized JSON trees, field paths and merge patches
//   - diff: structural diff between desired and live trees
//   - reconciler: plans and applies create, update and delete operations
//   - state: last applied documents used for three-way pruning
//   - schema: JSON schema of deployment documents
package svc
