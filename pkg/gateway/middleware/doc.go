// Package middleware contains the HTTP middleware chain for the gateway.
package middleware
