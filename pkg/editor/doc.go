// Package editor defines the contract deposit regions use to drive a
// schema-driven form editor: construction from a schema document, ready and
// change notifications, and value access. Concrete editors (see
// pkg/editor/prompt) satisfy Editor and are built through a Factory.
package editor
