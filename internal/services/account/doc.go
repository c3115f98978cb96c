// Package account manages the lifetime of the local Olm account.
//
// It enforces the passphrase policy, creates or imports the account, and
// pickles it through the domain.AccountStore after every change.
package account
