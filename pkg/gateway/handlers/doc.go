// Package handlers implements the gateway's HTTP endpoints.
package handlers
