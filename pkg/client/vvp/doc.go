// Package vvp is a client for the Ververica Platform deployments REST API.
//
//	GET    /api/v1/namespaces/{ns}/deployments
//	GET    /api/v1/namespaces/{ns}/deployments/{name}
//	POST   /api/v1/namespaces/{ns}/deployments
//	PATCH  /api/v1/namespaces/{ns}/deployments/{name}   (application/merge-patch+json)
//	DELETE /api/v1/namespaces/{ns}/deployments/{name}
//
// Transient failures are retried with bounded exponential backoff. When the
// retries are exhausted the error is reported as a *ConnectivityError.
package vvp
