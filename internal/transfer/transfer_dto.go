package transfer

import (
	"time"

	"github.com/google/uuid"
)

// AttachmentInput references an upload already stored by the upload
// endpoint; the request only binds it into the workflow.
type AttachmentInput struct {
	UploadID string  `json:"uploadId" binding:"required,uuid"`
	Label    *string `json:"label" binding:"omitempty,max=200"`
}

type CreateTransferRequest struct {
	Title        string            `json:"title" binding:"required,min=3,max=200"`
	FromLocation string            `json:"fromLocation" binding:"required,min=1,max=200"`
	ToLocation   string            `json:"toLocation" binding:"required,min=1,max=200"`
	Purpose      string            `json:"purpose" binding:"omitempty,max=2000"`
	SupervisorID *string           `json:"supervisorId" binding:"omitempty,uuid"`
	Attachments  []AttachmentInput `json:"attachments" binding:"omitempty,max=10,dive"`
}

// ResubmitTransferRequest carries the full corrected request body. The
// attachment set replaces whatever was attached before.
type ResubmitTransferRequest struct {
	Title        string            `json:"title" binding:"required,min=3,max=200"`
	FromLocation string            `json:"fromLocation" binding:"required,min=1,max=200"`
	ToLocation   string            `json:"toLocation" binding:"required,min=1,max=200"`
	Purpose      string            `json:"purpose" binding:"omitempty,max=2000"`
	Attachments  []AttachmentInput `json:"attachments" binding:"omitempty,max=10,dive"`
}

type ApproveRequest struct {
	Comment string `json:"comment" binding:"omitempty,max=2000"`
}

type RejectRequest struct {
	Comment string `json:"comment" binding:"required,min=3,max=2000"`
}

type RequestChangesRequest struct {
	Comment string `json:"comment" binding:"required,min=3,max=2000"`
}

type AssignManagerRequest struct {
	ManagerID string `json:"managerId" binding:"required,uuid"`
}

type ListTransferQuery struct {
	Tab    string `form:"tab" binding:"omitempty,oneof=new completed all"`
	Status string `form:"status"`
	Search string `form:"search" binding:"omitempty,max=200"`
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=10"`
}

type CreateTransferResponse struct {
	ID string `json:"id"`
}

// TransferSummary is the list row: enough to render the queue without the
// comment and attachment payloads.
type TransferSummary struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	FromLocation string     `json:"fromLocation"`
	ToLocation   string     `json:"toLocation"`
	Status       string     `json:"status"`
	CreatedByID  string     `json:"createdById"`
	SupervisorID *string    `json:"supervisorId"`
	ManagerID    *string    `json:"managerId"`
	SubmittedAt  *time.Time `json:"submittedAt"`
	CompletedAt  *time.Time `json:"completedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type CommentResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	AuthorRole string    `json:"authorRole"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

type AttachmentResponse struct {
	ID           string  `json:"id"`
	UploadID     string  `json:"uploadId"`
	OriginalName string  `json:"originalName"`
	MimeType     string  `json:"mimeType"`
	Size         int64   `json:"size"`
	Label        *string `json:"label"`
}

type AuditEntryResponse struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	ActorID    string    `json:"actorId"`
	FromStatus *string   `json:"fromStatus"`
	ToStatus   *string   `json:"toStatus"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TransferDetail is the full record: summary fields plus purpose, comments,
// attachments and the audit trail.
type TransferDetail struct {
	TransferSummary
	Purpose     string               `json:"purpose"`
	Comments    []CommentResponse    `json:"comments"`
	Attachments []AttachmentResponse `json:"attachments"`
	History     []AuditEntryResponse `json:"history"`
}

type StatsResponse struct {
	Created  int64 `json:"created"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

func uuidPtrToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func summaryFromEntity(r *TransferRequest) TransferSummary {
	return TransferSummary{
		ID:           r.ID.String(),
		Title:        r.Title,
		FromLocation: r.FromLocation,
		ToLocation:   r.ToLocation,
		Status:       string(r.Status),
		CreatedByID:  r.CreatedByID.String(),
		SupervisorID: uuidPtrToString(r.SupervisorID),
		ManagerID:    uuidPtrToString(r.ManagerID),
		SubmittedAt:  r.SubmittedAt,
		CompletedAt:  r.CompletedAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
