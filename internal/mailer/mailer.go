// Package mailer sends outbound mail. The composer builds verification
// messages; transports deliver them over SMTP or, in dev, into the log.
package mailer

import "context"

// Message is one outbound email, already rendered.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers messages. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
