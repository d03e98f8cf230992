//go:build lwmdebug

package ring

const debugChecks = true
