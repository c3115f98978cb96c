// Package group manages Megolm sessions for rooms: outbound sessions this
// device sends with and inbound sessions imported from session keys.
package group
