// Package domain defines staged documents and the delivery workflow contract.
//
// A document is staged in the blob store under its id, delivered upstream by a
// document.delivery job and deleted after the retention period.
package domain

import (
	"io"
	"time"
)

// JobKind is the job kind of the delivery workflow.
const JobKind = "document.delivery"

// Delivery workflow step names, in execution order.
const (
	StepRetrieveInfo = "retrieve_info"
	StepAuthenticate = "authenticate"
	StepUpload       = "upload_to_upstream"
	StepSleep        = "sleep"
	StepCleanup      = "cleanup"
)

// Defaults applied to uploads that omit them.
const (
	DefaultContentType = "application/octet-stream"
	DefaultName        = "document"
)

// Blob metadata keys.
const (
	MetaOriginalName = "original-name"
	MetaRequester    = "requester"
	MetaUploadedAt   = "uploaded-at"
	MetaAccountID    = "account-id"
)

// Document describes a staged blob.
type Document struct {
	ID             string
	Name           string
	ContentType    string
	Size           int64
	AccountID      string
	RequesterEmail string
	UploadedAt     time.Time
}

// UploadInput is a document submitted for delivery.
type UploadInput struct {
	AccountID      string
	Name           string
	ContentType    string
	Body           io.Reader
	RequesterEmail string
}

// UploadOutput identifies the staged document and its delivery job.
type UploadOutput struct {
	DocumentID string
	JobID      string
}

// AcceptedDocument is one attachment accepted from an inbound email.
type AcceptedDocument struct {
	Name       string
	DocumentID string
	JobID      string
}

// FailedDocument is one attachment that could not be staged. Reason is safe to
// return to the sending system.
type FailedDocument struct {
	Name   string
	Reason string
}

// ReasonStagingFailed is reported for an attachment lost to a storage or
// scheduling error after other attachments of the same message were accepted.
const ReasonStagingFailed = "document could not be staged"

// IngestOutput lists the documents accepted from one inbound email.
type IngestOutput struct {
	AccountID string
	Accepted  []AcceptedDocument
	Failed    []FailedDocument
}

// DeliveryParams are the parameters of a document.delivery job.
type DeliveryParams struct {
	AccountID      string `json:"account_id"`
	DocumentID     string `json:"document_id"`
	DocumentName   string `json:"document_name"`
	RequesterEmail string `json:"requester_email,omitempty"`
}

// BlobInfo is the result of the retrieve_info step.
type BlobInfo struct {
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// UploadRecord is the result of the upload_to_upstream step.
type UploadRecord struct {
	StatusCode  int    `json:"status_code"`
	UpstreamID  string `json:"upstream_id,omitempty"`
	Destination string `json:"destination"`
}

// PutOptions are the attributes stored with a blob.
type PutOptions struct {
	ContentType        string
	ContentDisposition string
	Metadata           map[string]string
}

// BlobObject is the stored attributes of a blob.
type BlobObject struct {
	Key         string
	Size        int64
	ContentType string
	ModTime     time.Time
	Metadata    map[string]string
}
