// Package client contains the clients vvpctl uses to reach the Ververica
// Platform.
//
//   - vvp: REST client for the deployments API
//   - vvp/vvptest: in-memory API server for tests
//   - netretry: bounded exponential backoff for transient failures
package client
