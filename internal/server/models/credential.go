package models

import "time"

// CredentialEntry is one stored site credential. Site is plaintext and used
// as the search key; SiteUsername and SitePassword are opaque ciphertext
// envelopes produced client-side. Entries are append-only: created on add,
// read via search, never updated or deleted.
type CredentialEntry struct {
	ID           int64
	UserID       int64
	Site         string
	SiteUsername string
	SitePassword string
	CreatedAt    time.Time
}
