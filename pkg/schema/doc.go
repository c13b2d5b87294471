// Package schema describes where deposit JSON Schema documents come from and
// wraps fetched documents so they stay immutable once loaded. Loader
// implementations live in internal/schemaloader and are built through the
// root package.
package schema
