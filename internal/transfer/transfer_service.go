package transfer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"transferdesk/internal/audit"
	"transferdesk/internal/domain"
	"transferdesk/internal/notification"
	"transferdesk/internal/shared/apperror"
	transfererrors "transferdesk/internal/transfer/errors"
	"transferdesk/internal/upload"
	"transferdesk/internal/user"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	statsCacheKey = "transfer:stats"
	statsCacheTTL = 30 * time.Second
)

//go:generate mockgen -source=transfer_service.go -destination=mock/transfer_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor domain.Actor, req CreateTransferRequest) (*CreateTransferResponse, error)
	List(ctx context.Context, actor domain.Actor, q ListTransferQuery) ([]TransferSummary, int64, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (*TransferDetail, error)

	Approve(ctx context.Context, actor domain.Actor, id string, req ApproveRequest) (*TransferSummary, error)
	Reject(ctx context.Context, actor domain.Actor, id string, req RejectRequest) (*TransferSummary, error)
	RequestChanges(ctx context.Context, actor domain.Actor, id string, req RequestChangesRequest) (*TransferSummary, error)
	Resubmit(ctx context.Context, actor domain.Actor, id string, req ResubmitTransferRequest) (*TransferSummary, error)
	AssignManager(ctx context.Context, actor domain.Actor, id string, req AssignManagerRequest) (*TransferSummary, error)

	Stats(ctx context.Context) (*StatsResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	auditRepo  audit.Repository
	uploadRepo upload.Repository
	userRepo   user.Repository
	notifier   notification.Notifier
	rdb        *redis.Client
	sf         singleflight.Group
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	auditRepo audit.Repository,
	uploadRepo upload.Repository,
	userRepo user.Repository,
	notifier notification.Notifier,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("transfer.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("transfer.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		auditRepo:  auditRepo,
		uploadRepo: uploadRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		rdb:        rdb,
		logger:     l,
	}
}

// Create stores a new request directly in Submitted, together with its
// attachments and the Create audit row, in one transaction.
func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateTransferRequest) (*CreateTransferResponse, error) {
	supervisorID, err := s.resolveSupervisor(ctx, req.SupervisorID)
	if err != nil {
		return nil, err
	}

	attachments, err := parseAttachmentInputs(req.Attachments)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("begin tx failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qUpload := s.uploadRepo.WithTx(tx)
	qAudit := s.auditRepo.WithTx(tx)

	uploadIDs := make([]uuid.UUID, len(attachments))
	for i, a := range attachments {
		uploadIDs[i] = a.UploadID
	}
	ok, err := qUpload.AllExist(ctx, uploadIDs)
	if err != nil {
		s.logger.Error("attachment lookup failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}
	if !ok {
		return nil, transfererrors.ErrUnknownAttachment
	}

	now := time.Now().UTC()
	record := &TransferRequest{
		Title:        req.Title,
		FromLocation: req.FromLocation,
		ToLocation:   req.ToLocation,
		Purpose:      req.Purpose,
		Status:       StatusSubmitted,
		CreatedByID:  actor.ID,
		SupervisorID: supervisorID,
		SubmittedAt:  &now,
	}
	if err := qtx.Create(ctx, record); err != nil {
		s.logger.Error("create request failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}

	for i := range attachments {
		attachments[i].RequestID = record.ID
	}
	if err := qtx.CreateAttachments(ctx, attachments); err != nil {
		s.logger.Error("create attachments failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}

	if err := s.writeAudit(ctx, qAudit, record.ID, audit.ActionCreate, actor, nil, statusPtr(StatusSubmitted), nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}

	if supervisorID != nil {
		s.notify(ctx, *supervisorID,
			fmt.Sprintf("New transfer request submitted: %s", record.Title),
			fmt.Sprintf("<p>A new transfer request <b>%s</b> is awaiting your review.</p>", record.Title),
		)
	}

	return &CreateTransferResponse{ID: record.ID.String()}, nil
}

// Approve moves the request through the gate the actor's role owns:
// supervisors take Submitted (or their own changes-requested parking state)
// to SupervisorApproved, managers take SupervisorApproved (or theirs) to the
// terminal ManagerApproved.
func (s *service) Approve(ctx context.Context, actor domain.Actor, id string, req ApproveRequest) (*TransferSummary, error) {
	if err := validateComment(req.Comment, false); err != nil {
		return nil, err
	}

	return s.transition(ctx, actor, id, func(r *TransferRequest) (Status, *time.Time, string, error) {
		switch actor.Role {
		case domain.RoleSupervisor:
			if !SupervisorActionable(r.Status) {
				return "", nil, "", transfererrors.ErrInvalidStateTransition
			}
			return StatusSupervisorApproved, nil, audit.ActionApprove, nil
		case domain.RoleManager:
			// State is checked before exclusivity: on a request that left
			// the manager gate, every manager gets the same Conflict.
			if !ManagerActionable(r.Status) {
				return "", nil, "", transfererrors.ErrInvalidStateTransition
			}
			if err := managerMayAct(actor, r); err != nil {
				return "", nil, "", err
			}
			now := time.Now().UTC()
			return StatusManagerApproved, &now, audit.ActionApprove, nil
		default:
			return "", nil, "", apperror.ErrForbidden
		}
	}, req.Comment, s.approveNotification)
}

// Reject terminates the request at the actor's gate. The comment is the
// mandatory rejection reason.
func (s *service) Reject(ctx context.Context, actor domain.Actor, id string, req RejectRequest) (*TransferSummary, error) {
	if err := validateComment(req.Comment, true); err != nil {
		return nil, err
	}

	return s.transition(ctx, actor, id, func(r *TransferRequest) (Status, *time.Time, string, error) {
		now := time.Now().UTC()
		switch actor.Role {
		case domain.RoleSupervisor:
			if !SupervisorActionable(r.Status) {
				return "", nil, "", transfererrors.ErrInvalidStateTransition
			}
			return StatusSupervisorRejected, &now, audit.ActionReject, nil
		case domain.RoleManager:
			if !ManagerActionable(r.Status) {
				return "", nil, "", transfererrors.ErrInvalidStateTransition
			}
			if err := managerMayAct(actor, r); err != nil {
				return "", nil, "", err
			}
			return StatusManagerRejected, &now, audit.ActionReject, nil
		default:
			return "", nil, "", apperror.ErrForbidden
		}
	}, req.Comment, s.creatorNotification("Transfer request rejected: %s",
		"<p>Your transfer request <b>%s</b> was rejected.</p>"))
}

// RequestChanges parks the request in the actor's changes-requested state.
// Unlike approve and reject it is only legal from the gate's entry status:
// a request already parked for changes has nothing new to ask for.
func (s *service) RequestChanges(ctx context.Context, actor domain.Actor, id string, req RequestChangesRequest) (*TransferSummary, error) {
	if err := validateComment(req.Comment, true); err != nil {
		return nil, err
	}

	return s.transition(ctx, actor, id, func(r *TransferRequest) (Status, *time.Time, string, error) {
		switch actor.Role {
		case domain.RoleSupervisor:
			if r.Status != StatusSubmitted {
				return "", nil, "", transfererrors.ErrInvalidStateTransition
			}
			return StatusSupervisorChangesRequested, nil, audit.ActionRequestChanges, nil
		case domain.RoleManager:
			if r.Status != StatusSupervisorApproved {
				return "", nil, "", transfererrors.ErrInvalidStateTransition
			}
			if err := managerMayAct(actor, r); err != nil {
				return "", nil, "", err
			}
			return StatusManagerChangesRequested, nil, audit.ActionRequestChanges, nil
		default:
			return "", nil, "", apperror.ErrForbidden
		}
	}, req.Comment, s.creatorNotification("Changes requested on transfer request: %s",
		"<p>Changes were requested on your transfer request <b>%s</b>.</p>"))
}

// Resubmit lets the owner return a changes-requested request to Submitted
// with corrected content. The attachment set is replaced wholesale and the
// submission timestamp resets; the request re-enters the supervisor gate
// even when a manager asked for the changes.
func (s *service) Resubmit(ctx context.Context, actor domain.Actor, id string, req ResubmitTransferRequest) (*TransferSummary, error) {
	requestID, err := parseRequestID(id)
	if err != nil {
		return nil, err
	}

	attachments, err := parseAttachmentInputs(req.Attachments)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("begin tx failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qUpload := s.uploadRepo.WithTx(tx)
	qAudit := s.auditRepo.WithTx(tx)

	record, err := s.findRequest(ctx, qtx, requestID)
	if err != nil {
		return nil, err
	}
	if record.CreatedByID != actor.ID {
		return nil, transfererrors.ErrNotRequestOwner
	}
	if !CanResubmitFrom(record.Status) {
		return nil, transfererrors.ErrInvalidStateTransition
	}

	uploadIDs := make([]uuid.UUID, len(attachments))
	for i, a := range attachments {
		uploadIDs[i] = a.UploadID
	}
	ok, err := qUpload.AllExist(ctx, uploadIDs)
	if err != nil {
		s.logger.Error("attachment lookup failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}
	if !ok {
		return nil, transfererrors.ErrUnknownAttachment
	}

	now := time.Now().UTC()
	changed, err := qtx.ResubmitUpdate(ctx, requestID, record.Status, ResubmitFields{
		Title:        req.Title,
		FromLocation: req.FromLocation,
		ToLocation:   req.ToLocation,
		Purpose:      req.Purpose,
		SubmittedAt:  now,
	})
	if err != nil {
		s.logger.Error("resubmit update failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}
	if !changed {
		return nil, transfererrors.ErrInvalidStateTransition
	}

	for i := range attachments {
		attachments[i].RequestID = requestID
	}
	if err := qtx.ReplaceAttachments(ctx, requestID, attachments); err != nil {
		s.logger.Error("replace attachments failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}

	from := record.Status
	if err := s.writeAudit(ctx, qAudit, requestID, audit.ActionResubmit, actor, statusPtr(from), statusPtr(StatusSubmitted), nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}

	record.Status = StatusSubmitted
	record.Title = req.Title
	record.FromLocation = req.FromLocation
	record.ToLocation = req.ToLocation
	record.Purpose = req.Purpose
	record.SubmittedAt = &now
	summary := summaryFromEntity(record)
	return &summary, nil
}

// AssignManager routes the request to a specific manager before the manager
// gate is decided. The status does not change; the audit row records the
// same status on both sides.
func (s *service) AssignManager(ctx context.Context, actor domain.Actor, id string, req AssignManagerRequest) (*TransferSummary, error) {
	if actor.Role != domain.RoleSupervisor {
		return nil, transfererrors.ErrSupervisorRoleRequired
	}

	requestID, err := parseRequestID(id)
	if err != nil {
		return nil, err
	}

	managerID, err := uuid.Parse(req.ManagerID)
	if err != nil {
		return nil, apperror.InvalidField("managerId")
	}
	manager, err := s.userRepo.FindByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transfererrors.ErrManagerNotFound
		}
		s.logger.Error("manager lookup failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}
	if manager.Role != domain.RoleManager {
		return nil, transfererrors.ErrNotAManager
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("begin tx failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qAudit := s.auditRepo.WithTx(tx)

	record, err := s.findRequest(ctx, qtx, requestID)
	if err != nil {
		return nil, err
	}
	if !CanAssignManagerIn(record.Status) {
		return nil, transfererrors.ErrInvalidStateTransition
	}

	changed, err := qtx.AssignManager(ctx, requestID, record.Status, managerID)
	if err != nil {
		s.logger.Error("assign manager failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}
	if !changed {
		return nil, transfererrors.ErrInvalidStateTransition
	}

	data := map[string]string{"managerId": managerID.String()}
	if err := s.writeAudit(ctx, qAudit, requestID, audit.ActionAssignManager, actor, statusPtr(record.Status), statusPtr(record.Status), data); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}

	record.ManagerID = &managerID
	summary := summaryFromEntity(record)
	return &summary, nil
}

// GetByID returns the full record including comments, attachments and the
// audit trail. Regular users only see their own requests.
func (s *service) GetByID(ctx context.Context, actor domain.Actor, id string) (*TransferDetail, error) {
	requestID, err := parseRequestID(id)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.FindDetailByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transfererrors.ErrRequestNotFound
		}
		s.logger.Error("find request failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}

	// Outside the caller's visibility scope the request does not exist;
	// answering Forbidden would leak that the id is real.
	if actor.Role == domain.RoleUser && record.CreatedByID != actor.ID {
		return nil, transfererrors.ErrRequestNotFound
	}

	history, err := s.auditRepo.ListByEntity(ctx, audit.EntityTransferRequest, requestID)
	if err != nil {
		s.logger.Error("load history failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}

	detail := &TransferDetail{
		TransferSummary: summaryFromEntity(record),
		Purpose:         record.Purpose,
		Comments:        make([]CommentResponse, len(record.Comments)),
		Attachments:     make([]AttachmentResponse, len(record.Attachments)),
		History:         make([]AuditEntryResponse, len(history)),
	}
	for i, c := range record.Comments {
		name := ""
		if c.Author != nil {
			name = c.Author.DisplayName()
		}
		detail.Comments[i] = CommentResponse{
			ID:         c.ID.String(),
			AuthorID:   c.AuthorID.String(),
			AuthorName: name,
			AuthorRole: c.AuthorRole,
			Body:       c.Body,
			CreatedAt:  c.CreatedAt,
		}
	}
	for i, a := range record.Attachments {
		resp := AttachmentResponse{
			ID:       a.ID.String(),
			UploadID: a.UploadID.String(),
			Label:    a.Label,
		}
		if a.Upload != nil {
			resp.OriginalName = a.Upload.OriginalName
			resp.MimeType = a.Upload.MimeType
			resp.Size = a.Upload.Size
		}
		detail.Attachments[i] = resp
	}
	for i, h := range history {
		detail.History[i] = AuditEntryResponse{
			ID:         h.ID.String(),
			Action:     h.Action,
			ActorID:    h.ActorID.String(),
			FromStatus: h.FromStatus,
			ToStatus:   h.ToStatus,
			CreatedAt:  h.CreatedAt,
		}
	}
	return detail, nil
}

// List returns the role-scoped queue. Regular users are pinned to their own
// requests regardless of filters; approver roles see everything.
func (s *service) List(ctx context.Context, actor domain.Actor, q ListTransferQuery) ([]TransferSummary, int64, error) {
	if q.Page < 1 {
		return nil, 0, transfererrors.InvalidPagination("page")
	}
	if q.Limit < 1 {
		return nil, 0, transfererrors.InvalidPagination("limit")
	}
	if q.Limit > 100 {
		q.Limit = 100
	}

	filter := ListFilter{
		Search: q.Search,
		Page:   q.Page,
		Limit:  q.Limit,
	}

	switch actor.Role {
	case domain.RoleUser:
		creator := actor.ID
		filter.CreatedByID = &creator
	case domain.RoleSupervisor, domain.RoleManager, domain.RoleAdmin:
		// unrestricted
	default:
		return nil, 0, apperror.ErrForbidden
	}

	statuses, err := tabStatuses(actor.Role, q.Tab)
	if err != nil {
		return nil, 0, err
	}
	if q.Status != "" {
		st, ok := ParseStatus(q.Status)
		if !ok {
			return nil, 0, transfererrors.ErrInvalidStatusFilter
		}
		// An explicit status filter narrows within the selected tab.
		statuses = []Status{st}
	}
	filter.Statuses = statuses

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list requests failed", zap.Error(err))
		return nil, 0, apperror.ErrInternal
	}

	summaries := make([]TransferSummary, len(records))
	for i := range records {
		summaries[i] = summaryFromEntity(&records[i])
	}
	return summaries, total, nil
}

// Stats aggregates workflow activity from the audit trail. The result is
// cached briefly and concurrent cache misses collapse into one query.
func (s *service) Stats(ctx context.Context) (*StatsResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, statsCacheKey).Result(); err == nil {
			var stats StatsResponse
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	v, err, _ := s.sf.Do(statsCacheKey, func() (any, error) {
		created, err := s.auditRepo.CountByAction(ctx, audit.EntityTransferRequest, audit.ActionCreate)
		if err != nil {
			return nil, err
		}
		approved, err := s.auditRepo.CountByAction(ctx, audit.EntityTransferRequest, audit.ActionApprove)
		if err != nil {
			return nil, err
		}
		rejected, err := s.auditRepo.CountByAction(ctx, audit.EntityTransferRequest, audit.ActionReject)
		if err != nil {
			return nil, err
		}
		return &StatsResponse{Created: created, Approved: approved, Rejected: rejected}, nil
	})
	if err != nil {
		s.logger.Error("stats aggregation failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}
	stats := v.(*StatsResponse)

	if s.rdb != nil {
		if payload, err := json.Marshal(stats); err == nil {
			s.rdb.Set(ctx, statsCacheKey, payload, statsCacheTTL)
		}
	}
	return stats, nil
}

// transition runs the shared decide-and-move sequence: load the row inside a
// transaction, let decide pick the target status, move with the conditional
// update, append the optional comment and the audit row, then notify after
// commit.
func (s *service) transition(
	ctx context.Context,
	actor domain.Actor,
	id string,
	decide func(r *TransferRequest) (to Status, completedAt *time.Time, action string, err error),
	comment string,
	notify func(ctx context.Context, r *TransferRequest),
) (*TransferSummary, error) {
	requestID, err := parseRequestID(id)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("begin tx failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qAudit := s.auditRepo.WithTx(tx)

	record, err := s.findRequest(ctx, qtx, requestID)
	if err != nil {
		return nil, err
	}

	to, completedAt, action, err := decide(record)
	if err != nil {
		return nil, err
	}

	changed, err := qtx.TransitionStatus(ctx, requestID, record.Status, to, completedAt)
	if err != nil {
		s.logger.Error("status update failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}
	if !changed {
		// Someone else moved the request between our read and our write.
		return nil, transfererrors.ErrInvalidStateTransition
	}

	if comment != "" {
		if err := qtx.CreateComment(ctx, &TransferComment{
			RequestID:  requestID,
			AuthorID:   actor.ID,
			AuthorRole: actor.Role,
			Body:       comment,
		}); err != nil {
			s.logger.Error("create comment failed", zap.Error(err))
			return nil, apperror.ErrInternal
		}
	}

	var data map[string]string
	if comment != "" {
		data = map[string]string{"comment": comment}
	}
	from := record.Status
	if err := s.writeAudit(ctx, qAudit, requestID, action, actor, statusPtr(from), statusPtr(to), data); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}

	record.Status = to
	if completedAt != nil {
		record.CompletedAt = completedAt
	}
	if notify != nil {
		notify(ctx, record)
	}

	summary := summaryFromEntity(record)
	return &summary, nil
}

func (s *service) findRequest(ctx context.Context, repo Repository, id uuid.UUID) (*TransferRequest, error) {
	record, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transfererrors.ErrRequestNotFound
		}
		s.logger.Error("find request failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}
	return record, nil
}

func (s *service) writeAudit(
	ctx context.Context,
	repo audit.Repository,
	entityID uuid.UUID,
	action string,
	actor domain.Actor,
	from, to *string,
	data map[string]string,
) error {
	var payload *string
	if len(data) > 0 {
		raw, err := json.Marshal(data)
		if err != nil {
			s.logger.Error("encode audit data failed", zap.Error(err))
			return apperror.ErrInternal
		}
		str := string(raw)
		payload = &str
	}

	if err := repo.Create(ctx, &audit.AuditLog{
		EntityType: audit.EntityTransferRequest,
		EntityID:   entityID,
		Action:     action,
		ActorID:    actor.ID,
		FromStatus: from,
		ToStatus:   to,
		Data:       payload,
	}); err != nil {
		s.logger.Error("write audit log failed", zap.Error(err))
		return apperror.ErrInternal
	}
	return nil
}

// resolveSupervisor validates an optional supervisor selection on create.
func (s *service) resolveSupervisor(ctx context.Context, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, apperror.InvalidField("supervisorId")
	}
	supervisor, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, transfererrors.ErrSupervisorNotFound
		}
		s.logger.Error("supervisor lookup failed", zap.Error(err))
		return nil, apperror.ErrInternal
	}
	if supervisor.Role != domain.RoleSupervisor {
		return nil, transfererrors.ErrNotASupervisor
	}
	return &id, nil
}

// approveNotification routes a supervisor approval to the assigned manager,
// falling back to the creator when no manager is assigned yet; a manager
// approval always goes to the creator.
func (s *service) approveNotification(ctx context.Context, r *TransferRequest) {
	switch r.Status {
	case StatusSupervisorApproved:
		recipient := r.CreatedByID
		if r.ManagerID != nil {
			recipient = *r.ManagerID
		}
		s.notify(ctx, recipient,
			fmt.Sprintf("Transfer request approved by supervisor: %s", r.Title),
			fmt.Sprintf("<p>Transfer request <b>%s</b> passed supervisor review.</p>", r.Title),
		)
	case StatusManagerApproved:
		s.notify(ctx, r.CreatedByID,
			fmt.Sprintf("Transfer request approved: %s", r.Title),
			fmt.Sprintf("<p>Your transfer request <b>%s</b> was approved.</p>", r.Title),
		)
	}
}

// creatorNotification builds a notify callback addressed to the creator with
// the given subject/body formats, each taking the request title.
func (s *service) creatorNotification(subjectFormat, bodyFormat string) func(ctx context.Context, r *TransferRequest) {
	return func(ctx context.Context, r *TransferRequest) {
		s.notify(ctx, r.CreatedByID,
			fmt.Sprintf(subjectFormat, r.Title),
			fmt.Sprintf(bodyFormat, r.Title),
		)
	}
}

// notify resolves the recipient's email and hands the message to the
// notifier. Every failure is logged and swallowed: the transition already
// committed and its outcome never depends on delivery.
func (s *service) notify(ctx context.Context, recipientID uuid.UUID, subject, bodyHTML string) {
	recipient, err := s.userRepo.FindByID(ctx, recipientID)
	if err != nil {
		s.logger.Warn("notification recipient lookup failed",
			zap.String("recipient_id", recipientID.String()),
			zap.Error(err),
		)
		return
	}
	if err := s.notifier.Send(ctx, recipient.Email, subject, bodyHTML); err != nil {
		s.logger.Warn("notification send failed",
			zap.String("recipient", recipient.Email),
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

func managerMayAct(actor domain.Actor, r *TransferRequest) error {
	if r.ManagerID != nil && *r.ManagerID != actor.ID {
		return transfererrors.ErrNotAssignedManager
	}
	return nil
}

func validateComment(comment string, required bool) error {
	if comment == "" {
		if required {
			return transfererrors.ErrCommentRequired
		}
		return nil
	}
	if len([]rune(comment)) < 3 && required {
		return transfererrors.ErrCommentRequired
	}
	if len([]rune(comment)) > 2000 {
		return transfererrors.ErrCommentTooLong
	}
	return nil
}

// tabStatuses maps a queue tab to the status set it shows for the role:
// "new" is whatever awaits the viewer's own gate.
func tabStatuses(role, tab string) ([]Status, error) {
	switch tab {
	case "", "all":
		return nil, nil
	case "completed":
		return []Status{StatusManagerApproved, StatusManagerRejected}, nil
	case "new":
		switch role {
		case domain.RoleSupervisor:
			return []Status{StatusSubmitted, StatusSupervisorChangesRequested}, nil
		case domain.RoleManager:
			return []Status{StatusSupervisorApproved, StatusManagerChangesRequested}, nil
		default:
			// For creators "new" means still in flight.
			return []Status{
				StatusSubmitted,
				StatusSupervisorApproved,
				StatusSupervisorChangesRequested,
				StatusManagerChangesRequested,
			}, nil
		}
	default:
		return nil, transfererrors.ErrInvalidTab
	}
}

func parseRequestID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, transfererrors.ErrInvalidRequestID
	}
	return parsed, nil
}

func statusPtr(s Status) *string {
	str := string(s)
	return &str
}

func parseAttachmentInputs(inputs []AttachmentInput) ([]TransferAttachment, error) {
	if len(inputs) > 10 {
		return nil, transfererrors.ErrTooManyAttachments
	}
	atts := make([]TransferAttachment, len(inputs))
	for i, in := range inputs {
		uploadID, err := uuid.Parse(in.UploadID)
		if err != nil {
			return nil, apperror.InvalidField("uploadId")
		}
		atts[i] = TransferAttachment{
			UploadID: uploadID,
			Label:    in.Label,
		}
	}
	return atts, nil
}
