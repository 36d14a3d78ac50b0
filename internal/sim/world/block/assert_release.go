//go:build !debug

package block

const debugBuild = false

// Release builds clamp out-of-range values instead of failing.
func assertf(bool, string, ...any) {}
