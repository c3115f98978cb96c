// Package store provides file-based persistence for olmctl.
//
// FileStore implements the domain storage interfaces. The account pickle is
// kept in its own file; sessions, group sessions and the public profile are
// JSON documents. Every write goes through a temporary file and a rename, and
// all methods are safe for concurrent use.
package store
