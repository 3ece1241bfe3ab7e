// Package inbound turns raw inbound email into documents addressed to an account.
//
// The recipient's local part is the account id, which must be a UUID, and every
// MIME attachment becomes one document. Messages missing either are rejected with a RejectionError whose
// reason is safe to return to the sending system.
package inbound

import (
	"errors"
	"fmt"
	"io"
	"strings"

	validation "github.com/jellydator/validation"
	"github.com/jhillyerd/enmime"

	customValidation "github.com/allisson/docrelay/internal/validation"
)

// Rejection reasons.
const (
	ReasonMissingRecipient = "missing recipient address"
	ReasonUnknownRecipient = "recipient is not an account address"
	ReasonNoAttachments    = "message has no attachments"
	ReasonUnreadable       = "message could not be parsed"
)

// FallbackName is used when neither the attachment nor the subject names the document.
const FallbackName = "attachment"

// ErrRejected is wrapped by every RejectionError.
var ErrRejected = errors.New("message rejected")

// RejectionError explains why a message was not accepted.
type RejectionError struct {
	Reason string
	Err    error
}

func (e *RejectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrRejected, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrRejected, e.Reason)
}

// Unwrap exposes both ErrRejected and the underlying cause.
func (e *RejectionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRejected}
	}
	return []error{ErrRejected, e.Err}
}

// Attachment is one document carried by a message.
type Attachment struct {
	FileName    string
	ContentType string
	Content     []byte
}

// Message is an accepted inbound email.
type Message struct {
	AccountID   string
	From        string
	Subject     string
	Attachments []Attachment
}

// Parse reads a raw RFC 5322 message.
func Parse(r io.Reader) (*Message, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, &RejectionError{Reason: ReasonUnreadable, Err: err}
	}

	accountID := recipientAccount(env)
	if accountID == "" {
		return nil, &RejectionError{Reason: ReasonMissingRecipient}
	}
	if err := validation.Validate(accountID, customValidation.AccountID); err != nil {
		return nil, &RejectionError{Reason: ReasonUnknownRecipient, Err: err}
	}

	if len(env.Attachments) == 0 {
		return nil, &RejectionError{Reason: ReasonNoAttachments}
	}

	subject := strings.TrimSpace(env.GetHeader("Subject"))
	msg := &Message{
		AccountID:   accountID,
		From:        sender(env),
		Subject:     subject,
		Attachments: make([]Attachment, 0, len(env.Attachments)),
	}

	for _, part := range env.Attachments {
		name := strings.TrimSpace(part.FileName)
		if name == "" {
			name = subject
		}
		if name == "" {
			name = FallbackName
		}
		msg.Attachments = append(msg.Attachments, Attachment{
			FileName:    name,
			ContentType: part.ContentType,
			Content:     part.Content,
		})
	}

	return msg, nil
}

// recipientAccount returns the lowercased local part of the first To address.
func recipientAccount(env *enmime.Envelope) string {
	addresses, err := env.AddressList("To")
	if err != nil {
		return ""
	}
	for _, address := range addresses {
		if local, _, ok := strings.Cut(address.Address, "@"); ok && strings.TrimSpace(local) != "" {
			return strings.ToLower(strings.TrimSpace(local))
		}
	}
	return ""
}

func sender(env *enmime.Envelope) string {
	addresses, err := env.AddressList("From")
	if err != nil || len(addresses) == 0 {
		return ""
	}
	return strings.ToLower(addresses[0].Address)
}
