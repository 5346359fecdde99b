package domain

import "time"

// MailMessage is the slice of a mailbox message the sync engine needs: the raw
// From header, the Subject, and the server-assigned receive time. InternalDate
// is zero when Gmail omitted it; sync then falls back to the current time.
type MailMessage struct {
	ID           string
	FromHeader   string
	Subject      string
	InternalDate time.Time
}
