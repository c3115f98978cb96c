// Package pickle seals long-lived secret state for storage.
//
// # Format
//
// A pickle is unpadded base64 of
//
//	version(1) ‖ argon2 time(4) ‖ argon2 memory KiB(4) ‖ argon2 threads(1) ‖
//	salt(16) ‖ nonce(24) ‖ XChaCha20-Poly1305(CBOR(state))
//
// The key is argon2id(passphrase, salt). The whole header and the pickle kind
// are authenticated as additional data, so a session pickle cannot be opened
// as an account and the cost parameters cannot be tampered with.
//
// # Errors
//
// ErrWrongPassphrase and ErrCorruptPickle share the same message text.
//
// # Legacy format
//
// LibolmDecrypt and Reader read pickles produced by libolm for one-way
// migration. Writer and LibolmEncrypt exist only to build test fixtures.
package pickle
