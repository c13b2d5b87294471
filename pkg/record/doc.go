// Package record holds the JSON object edited by a deposit session together
// with the copy and merge helpers every component uses when handing records
// across boundaries. Records are never aliased between owners.
package record
