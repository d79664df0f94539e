package domain

import "time"

// Message is a single delivered chat message in a room transcript.
type Message struct {
	Sender    string
	Content   string
	Timestamp time.Time
}
