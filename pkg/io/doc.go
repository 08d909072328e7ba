// Package io groups configuration input for vvpctl.
//
// Subpackages:
//   - config-manager: the configuration manager interface and the vvpctl
//     implementation backed by viper (file, environment and flags)
package io
