// Package localstore keeps small client-side state between runs in an SQLite
// file: the session tokens and the last viewport of each board.
//
// The schema is applied with embedded goose migrations when the store is
// opened. Store satisfies client.TokenStore.
package localstore
