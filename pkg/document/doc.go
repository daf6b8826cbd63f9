// Package document loads a quest document from YAML.
//
// Loading is eager: the whole tree is parsed into domain types and every
// structural defect and dangling reference is reported at once, so the engine
// never meets a malformed screen at runtime.
package document
