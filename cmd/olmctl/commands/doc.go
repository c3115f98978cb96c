// Package commands defines the olmctl CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init           Create an account or import a libolm pickle
//   - keys           Print the public identity keys
//   - fingerprint    Print the identity fingerprint
//   - generate-keys  Generate one-time keys and a fallback key
//   - publish        Print the signed key bundle and mark it published
//   - sign           Sign a message with the identity key
//   - start-session  Start an Olm session from a peer's keys
//   - encrypt        Encrypt a message to a peer
//   - decrypt        Decrypt a message from a peer
//   - group          Create, share and use Megolm group sessions
//
// # Implementation
//
// The root command builds the dependency graph (file store, services,
// logger) before any subcommand runs. All state lives under --home and every
// secret in it is pickled with --passphrase.
package commands
