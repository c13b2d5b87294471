// Package prompt implements editor.Editor on top of terminal prompts.
//
// The factory walks an object schema into a flat list of fields, resolving
// local and (optionally) remote $ref targets, and Edit asks for each field in
// turn. Every answer updates the value and fires the change handlers, so a
// binder keeps the region blob in step with the prompts.
package prompt
