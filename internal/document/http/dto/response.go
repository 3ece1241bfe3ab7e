package dto

import (
	documentDomain "github.com/allisson/docrelay/internal/document/domain"
)

// UploadResponse is returned once a document is staged for delivery.
type UploadResponse struct {
	Success bool   `json:"success"`
	FileID  string `json:"fileId"`
	JobID   string `json:"jobId"`
}

// AcceptedResponse is one document accepted from an inbound email.
type AcceptedResponse struct {
	FileID string `json:"fileId"`
	JobID  string `json:"jobId"`
	Name   string `json:"name"`
}

// FailedResponse is one attachment of an inbound email that was not staged.
type FailedResponse struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// IngestResponse lists the documents accepted from an inbound email.
type IngestResponse struct {
	Success  bool               `json:"success"`
	Accepted []AcceptedResponse `json:"accepted"`
	Failed   []FailedResponse   `json:"failed,omitempty"`
}

// MapUploadOutputToResponse converts an upload result to its API response.
func MapUploadOutputToResponse(output *documentDomain.UploadOutput) UploadResponse {
	return UploadResponse{
		Success: true,
		FileID:  output.DocumentID,
		JobID:   output.JobID,
	}
}

// MapIngestOutputToResponse converts an ingest result to its API response.
func MapIngestOutputToResponse(output *documentDomain.IngestOutput) IngestResponse {
	accepted := make([]AcceptedResponse, 0, len(output.Accepted))
	for _, doc := range output.Accepted {
		accepted = append(accepted, AcceptedResponse{
			FileID: doc.DocumentID,
			JobID:  doc.JobID,
			Name:   doc.Name,
		})
	}
	response := IngestResponse{Success: true, Accepted: accepted}
	for _, doc := range output.Failed {
		response.Failed = append(response.Failed, FailedResponse{Name: doc.Name, Reason: doc.Reason})
	}
	return response
}
