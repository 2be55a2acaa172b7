// Package nav dispatches navigation events onto the loading core.
//
// Flow per navigation: registry lookup, gate evaluation against the
// current principal, then an awaited load through the shared loader. The
// dispatcher owns no authorization logic and no loading logic; it
// sequences the collaborators and turns a gate denial into a redirect
// result for the caller to act on.
package nav
