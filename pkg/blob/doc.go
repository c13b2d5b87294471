// Package blob converts JSON documents to and from the text blob embedded in
// deposit page markup.
//
// The blob is three layers deep: the JSON serialization of the value, the
// UTF-8 bytes of that text, and the standard base64 encoding of those bytes.
// The outer layer only uses the base64 alphabet so the blob can sit inside any
// markup text node without escaping. An empty object always encodes to the
// empty string, and empty or whitespace-only blobs decode to an empty object.
package blob
