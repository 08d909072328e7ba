// Package apis provides the document types vvpctl reads and sends.
//
//   - deployment: Ververica Platform deployment documents (apiVersion v1, kind Deployment)
//
// The types describe the fields vvpctl validates; documents keep any other
// field the platform accepts.
package apis
