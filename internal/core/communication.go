package core

import "time"

// PublicRecipient is the reserved recipient/channel identifier denoting
// the public channel. The same string is therefore unavailable as a
// participant identifier.
const PublicRecipient = "~"

// Communication is an immutable (sender, recipient, content, timestamp)
// triple. Once appended to a history it is never mutated.
type Communication struct {
	Sender    string
	Recipient string
	Content   string
	Timestamp time.Time
}

// IsPublic reports whether comm targets the public channel.
func (c Communication) IsPublic() bool {
	return c.Recipient == PublicRecipient
}
