// Package runtime materializes unit handles from JavaScript bundles.
//
// A unit bundle is a script that assigns its public surface to the
// `exports` global. Evaluation happens in a fresh goja VM per load with a
// timeout and call-stack limit, so a misbehaving bundle cannot wedge the
// loader or leak state into other units.
package runtime
