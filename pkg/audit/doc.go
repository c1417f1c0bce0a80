// Package audit records every dispatch attempt for later inspection:
// which credential served which prompt, and how the call ended.
//
// Records are written asynchronously so the request path never blocks on
// storage. Entries reference credentials by id only; the secret itself is
// never persisted.
package audit
