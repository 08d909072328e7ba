// Package diff computes the structural difference between a desired and a
// live deployment tree.
//
// The result is an edit script of add, remove and modify records ordered by
// field path. Objects are compared key by key; scalars and arrays are
// compared as whole values. Server-managed fields are ignored, and removals
// can be limited to fields vvpctl applied before (three-way pruning) so that
// defaults filled in by the platform are left alone.
//
// Render prints a diff for humans.
package diff
