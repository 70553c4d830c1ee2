package models

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewMessageID generates an id for messages that arrive without a
// provider mid (attachments, human-sent replies).
func NewMessageID() string {
	return "msg-" + newULID()
}

// NewLogID generates an id for event log entries.
func NewLogID() string {
	return "log-" + newULID()
}

func newULID() string {
	id, _ := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	return id.String()
}
