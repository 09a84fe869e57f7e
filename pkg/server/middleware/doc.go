// Package middleware provides the HTTP middleware chain of the keywords
// server: request IDs, structured request logging, panic recovery, rate
// limiting and request body limits.
//
// Handlers are plain func(http.Handler) http.Handler values, so they plug
// into chi's Use as well as any hand-built chain.
package middleware
