// Package store holds the persisted collection of audits, the active-audit pointer,
// the JSON document codec, and the Persister contract implemented by the jsonfile
// and sqlite backends.
package store
