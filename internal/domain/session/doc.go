// Package session supplies the current principal snapshot to the
// navigation dispatcher.
//
// The Manager maps bearer tokens to principals; the HTTP layer resolves
// the token per request and stashes the principal on the request context,
// where ContextProvider picks it up. The core never reaches into global
// state for authorization input.
package session
