// Package sas implements short authentication string verification.
//
// Two devices exchange ephemeral Curve25519 keys, agree on a secret and
// compare a rendering of it, as seven emoji or three four-digit numbers,
// over a trusted channel. Once the users confirm a match, each side MACs
// its identity keys with the shared secret and the other side verifies them.
package sas
