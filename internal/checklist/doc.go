// Package checklist defines the static audit checklist: ordered sections of
// ordered questions, each carrying an impact weight used by exposure scoring.
//
// Templates are parsed from YAML, validated once, and are read-only afterwards.
// The embedded default template is returned by Default.
package checklist
