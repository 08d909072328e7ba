// Package state persists the last document vvpctl applied for each
// deployment.
//
// The platform fills in defaults for fields a document omits, so the live
// state always holds more fields than the desired state. Comparing against
// the last applied document tells which of those extra fields vvpctl put
// there itself and may therefore remove.
//
// Documents are stored as JSON in <dir>/<namespace>/<name>/applied.json.
package state
