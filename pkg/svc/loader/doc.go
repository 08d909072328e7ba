// Package loader reads desired deployment documents from YAML, JSON or TOML
// files, normalizes them into structural trees and validates them.
//
// A single YAML file may contain several documents separated by "---".
// ${VAR} placeholders are expanded from the environment before parsing.
package loader
