// Package transform defines the record transformation step applied between
// base64 decode and re-encode. Stages are looked up by name in a registry
// and composed into a Chain; remote gRPC plugins register themselves from
// internal/transport.
package transform
