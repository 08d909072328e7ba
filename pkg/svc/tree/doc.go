// Package tree provides the normalized structural representation shared by
// desired and live deployment state.
//
// A Tree holds JSON-shaped values only: map[string]any, []any, string,
// float64, bool and nil. Values produced by YAML, TOML and HTTP decoders are
// normalized through a JSON round trip so that semantically equal documents
// compare equal regardless of where they were read from.
//
// Field paths are sequences of object keys. Arrays are leaves.
package tree
