// Package app wires application dependencies for the CLI.
//
// It builds the file store, the logger and the account, key, session,
// message and group services from Config, exposing them via Wire.
package app
