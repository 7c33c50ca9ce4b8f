package contact

import "errors"

// ErrDeliveryFailed is returned when the contact email could not be sent.
// The message shown to the visitor asks them to try again later.
var ErrDeliveryFailed = errors.New("could not send your message, please try again later")

// ErrValidation is returned when a contact-form field is rejected. The
// Reason is safe to show to the visitor.
type ErrValidation struct {
	Field  string
	Reason string
}

func (e ErrValidation) Error() string {
	return e.Reason
}
