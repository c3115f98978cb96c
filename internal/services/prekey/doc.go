// Package prekey manages one-time and fallback keys and assembles the
// signed key bundle a device publishes.
package prekey
