// Package audit holds the audit record model and the engine that mutates it.
//
// The Engine records checklist answers, upserts remediation actions for NO
// answers, drives the IN_PROGRESS -> READY_REVIEW -> COMPLETE workflow, and
// demotes COMPLETE records whenever an open action appears. Records loaded
// from storage are reshaped to the checklist template with Engine.Normalize.
package audit
