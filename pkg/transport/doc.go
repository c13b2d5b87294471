// Package transport is the boundary between deposit sessions and the remote
// record resource. Every call takes an immutable RequestArgs snapshot and
// resolves to a tagged Result: either a Response or a Failure. Bodies are
// passed through verbatim; no schema is imposed on them here.
package transport
