// Package domain defines the models, storage contracts and errors shared
// between the protocol packages, the services and the CLI.
// It holds plain types and interfaces only.
package domain
