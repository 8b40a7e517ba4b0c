// Package messaging provides outbound text delivery for booking confirmations.
package messaging

import (
	"context"
	"fmt"
	"time"
)

// Service defines a pluggable outbound message delivery abstraction.
type Service interface {
	// SendMessage sends a message to a recipient phone number.
	SendMessage(ctx context.Context, to string, body string) error
}

// FormatBookingConfirmation builds the SMS body sent to a prospect after
// their demo slot is confirmed.
func FormatBookingConfirmation(name string, start, end time.Time) string {
	who := name
	if who == "" {
		who = "there"
	}
	return fmt.Sprintf("Hi %s! Your CloseLoop AI demo is confirmed for %s to %s. Reply here if you need to reschedule.",
		who, start.Format("Mon Jan 2 3:04 PM"), end.Format("3:04 PM"))
}
