// Package gateway provides the HTTP front door: the /api/chat endpoint,
// health and metrics endpoints, and the middleware chain (request ID,
// logging, recovery, access-token auth) around them.
package gateway
