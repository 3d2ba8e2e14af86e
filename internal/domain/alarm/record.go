package alarm

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultMessage is displayed when the user leaves the message empty.
	DefaultMessage = "Alarm!"

	// DisplayLayout renders fire times the way the user entered them.
	DisplayLayout = "02/01/2006 15:04"
)

// keyNamespace scopes derived keys so they never collide with other UUIDv5 users.
//
//nolint:gochecknoglobals // Constant namespace, uuid.UUID cannot be a const.
var keyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("alarm-clock:record"))

// Key identifies a pending wake in the registry. It is derived from the
// record's content, so two records with equal content share one key.
type Key string

// String implements fmt.Stringer.
func (k Key) String() string {
	return string(k)
}

// Record is one scheduled wake-up. Values are immutable; use NewRecord to build one.
type Record struct {
	// FireAt is the local wall-clock instant the alarm fires at, second precision.
	FireAt time.Time
	// Message is shown on the alert surface and in the notification.
	Message string
}

// NewRecord normalizes the fire time to the local zone with second precision,
// rounding a fractional second up so the record never fires before fireAt,
// and substitutes DefaultMessage for a blank message.
func NewRecord(fireAt time.Time, message string) Record {
	at := fireAt.Truncate(time.Second)
	if at.Before(fireAt) {
		at = at.Add(time.Second)
	}

	return Record{
		FireAt:  at.Local(),
		Message: NormalizeMessage(message),
	}
}

// NormalizeMessage trims the message and falls back to DefaultMessage.
func NormalizeMessage(message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return DefaultMessage
	}

	return message
}

// Key derives the registry key from the record's content.
func (r Record) Key() Key {
	name := strconv.FormatInt(r.FireAt.UnixNano(), 10) + "\x00" + r.Message

	return Key(uuid.NewSHA1(keyNamespace, []byte(name)).String())
}

// Equal reports whether both records describe the same alarm.
func (r Record) Equal(other Record) bool {
	return r.FireAt.Equal(other.FireAt) && r.Message == other.Message
}

// IsZero reports whether the record is unset.
func (r Record) IsZero() bool {
	return r.FireAt.IsZero() && r.Message == ""
}

// String implements fmt.Stringer.
func (r Record) String() string {
	return fmt.Sprintf("%q at %s", r.Message, r.FireAt.Format(DisplayLayout))
}
