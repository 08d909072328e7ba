// Package v1alpha1 contains the typed view of a Ververica Platform Deployment
// document as understood by vvpctl, together with its enums, defaults and
// validation rules.
package v1alpha1
