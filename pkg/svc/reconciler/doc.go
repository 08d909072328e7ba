// Package reconciler turns a diff into platform API calls.
//
// A plan orders the changes of a diff as creates, updates and deletes. A
// missing deployment is created with a single request carrying the whole
// document; an existing one receives one JSON merge patch per change. Every
// patch carries the resource version it expects, and the live version is
// re-read before the first mutation, so concurrent writers are detected
// instead of overwritten.
//
// When a request fails after earlier ones succeeded, Apply stops and returns
// a PartialApplyError listing the applied, failed and not applied changes.
// Nothing is rolled back; the platform stays the source of truth.
package reconciler
