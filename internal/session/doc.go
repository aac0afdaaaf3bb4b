// Package session runs audit operations against the persisted store.
//
// Every execution loads the whole store, repairs it against the checklist,
// applies one or more operations in order, and saves the result only when all
// of them succeed. Read-only views load and repair without saving.
package session
