// Package store provides the credential.Store backends: a SQLite-backed
// store for durable single-instance deployments and an in-memory store
// for tests and ephemeral setups.
package store
