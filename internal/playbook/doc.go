// Package playbook loads declarative YAML playbooks and turns their steps into session
// operations that run in one execution.
package playbook
