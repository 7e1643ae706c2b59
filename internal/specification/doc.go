// Package specification loads a template and parses the placeholder document
// it carries at its root. The document is validated against an embedded JSON
// Schema, checked for duplicate keys and, when it declares one, for a
// compatible generator version.
package specification
