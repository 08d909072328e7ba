// Package notify writes user-facing status lines for vvpctl commands.
//
// Message types include success (✔), error (✗), warning (⚠), info (ℹ),
// activity (►), generate (✚) and titles with an emoji. [ProgressGroup] runs
// deployment tasks with bounded parallelism and live status lines, and
// [StageSeparatingWriter] inserts blank lines between command stages.
package notify
