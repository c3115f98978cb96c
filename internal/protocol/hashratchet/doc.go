// Package hashratchet implements the Megolm ratchet: 128 bytes of state in four
// 32-byte parts R0..R3 plus a 32-bit counter.
//
// Advancing rehashes parts with HMAC-SHA-256 keyed by the source part over a
// one-byte part number. R3 changes every step, R2 every 2^8 steps, R1 every
// 2^16 and R0 every 2^24. A receiver can jump to any later index cheaply but
// can never recover an earlier one.
package hashratchet
