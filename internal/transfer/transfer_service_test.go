package transfer

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"transferdesk/internal/audit"
	"transferdesk/internal/domain"
	transfererrors "transferdesk/internal/transfer/errors"
	"transferdesk/internal/upload"
	"transferdesk/internal/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRepo implements Repository with overridable behavior and records
// every write it receives.
type fakeRepo struct {
	findByID   func(ctx context.Context, id uuid.UUID) (*TransferRequest, error)
	transition func(ctx context.Context, id uuid.UUID, from, to Status, completedAt *time.Time) (bool, error)
	list       func(ctx context.Context, filter ListFilter) ([]TransferRequest, int64, error)

	created          []*TransferRequest
	comments         []*TransferComment
	attachments      [][]TransferAttachment
	replacements     [][]TransferAttachment
	resubmits        []ResubmitFields
	assignedManagers []uuid.UUID
	listFilters      []ListFilter
}

func (f *fakeRepo) WithTx(*sql.Tx) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, r *TransferRequest) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	f.created = append(f.created, r)
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*TransferRequest, error) {
	return f.findByID(ctx, id)
}

func (f *fakeRepo) FindDetailByID(ctx context.Context, id uuid.UUID) (*TransferRequest, error) {
	return f.findByID(ctx, id)
}

func (f *fakeRepo) List(ctx context.Context, filter ListFilter) ([]TransferRequest, int64, error) {
	f.listFilters = append(f.listFilters, filter)
	if f.list != nil {
		return f.list(ctx, filter)
	}
	return nil, 0, nil
}

func (f *fakeRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status, completedAt *time.Time) (bool, error) {
	if f.transition != nil {
		return f.transition(ctx, id, from, to, completedAt)
	}
	return true, nil
}

func (f *fakeRepo) ResubmitUpdate(ctx context.Context, id uuid.UUID, from Status, fields ResubmitFields) (bool, error) {
	f.resubmits = append(f.resubmits, fields)
	return true, nil
}

func (f *fakeRepo) AssignManager(ctx context.Context, id uuid.UUID, current Status, managerID uuid.UUID) (bool, error) {
	f.assignedManagers = append(f.assignedManagers, managerID)
	return true, nil
}

func (f *fakeRepo) CreateComment(ctx context.Context, c *TransferComment) error {
	f.comments = append(f.comments, c)
	return nil
}

func (f *fakeRepo) CreateAttachments(ctx context.Context, atts []TransferAttachment) error {
	f.attachments = append(f.attachments, atts)
	return nil
}

func (f *fakeRepo) ReplaceAttachments(ctx context.Context, requestID uuid.UUID, atts []TransferAttachment) error {
	f.replacements = append(f.replacements, atts)
	return nil
}

type fakeAuditRepo struct {
	entries []audit.AuditLog
	counts  map[string]int64
}

func (f *fakeAuditRepo) WithTx(*sql.Tx) audit.Repository { return f }

func (f *fakeAuditRepo) Create(ctx context.Context, entry *audit.AuditLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]audit.AuditLog, error) {
	return f.entries, nil
}

func (f *fakeAuditRepo) CountByAction(ctx context.Context, entityType, action string) (int64, error) {
	return f.counts[action], nil
}

type fakeUploadRepo struct {
	allExist bool
}

func (f *fakeUploadRepo) WithTx(*sql.Tx) upload.Repository { return f }

func (f *fakeUploadRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]upload.Upload, error) {
	return nil, nil
}

func (f *fakeUploadRepo) AllExist(ctx context.Context, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	return f.allExist, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*user.User
}

func (f *fakeUserRepo) WithTx(*sql.Tx) user.Repository { return f }

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error { return nil }

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("record not found")
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, errors.New("record not found")
}

func (f *fakeUserRepo) ListActiveByRole(ctx context.Context, role string) ([]user.User, error) {
	return nil, nil
}

type sentMessage struct {
	recipient string
	subject   string
}

type recordingNotifier struct {
	sent    []sentMessage
	failErr error
}

func (n *recordingNotifier) Send(ctx context.Context, recipient, subject, bodyHTML string) error {
	if n.failErr != nil {
		return n.failErr
	}
	n.sent = append(n.sent, sentMessage{recipient: recipient, subject: subject})
	return nil
}

type serviceFixture struct {
	service  Service
	repo     *fakeRepo
	audit    *fakeAuditRepo
	uploads  *fakeUploadRepo
	users    *fakeUserRepo
	notifier *recordingNotifier
	mock     sqlmock.Sqlmock
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &serviceFixture{
		repo:     &fakeRepo{},
		audit:    &fakeAuditRepo{counts: map[string]int64{}},
		uploads:  &fakeUploadRepo{allExist: true},
		users:    &fakeUserRepo{users: map[uuid.UUID]*user.User{}},
		notifier: &recordingNotifier{},
		mock:     mock,
	}
	f.service = NewService(db, f.repo, f.audit, f.uploads, f.users, f.notifier, nil, zap.NewNop())
	return f
}

func (f *serviceFixture) addUser(role string) uuid.UUID {
	id := uuid.New()
	f.users.users[id] = &user.User{
		ID:       id,
		Email:    id.String() + "@example.com",
		Username: "u-" + id.String()[:8],
		Role:     role,
		IsActive: true,
	}
	return id
}

func (f *serviceFixture) stubRequest(r *TransferRequest) {
	f.repo.findByID = func(ctx context.Context, id uuid.UUID) (*TransferRequest, error) {
		copy := *r
		return &copy, nil
	}
}

func TestCreate_SubmitsAndNotifiesSupervisor(t *testing.T) {
	f := newServiceFixture(t)
	creator := f.addUser(domain.RoleUser)
	supervisor := f.addUser(domain.RoleSupervisor)
	supervisorStr := supervisor.String()

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	uploadID := uuid.New().String()
	resp, err := f.service.Create(context.Background(), domain.Actor{ID: creator, Role: domain.RoleUser}, CreateTransferRequest{
		Title:        "Relocate warehouse stock",
		FromLocation: "Berlin",
		ToLocation:   "Hamburg",
		Purpose:      "Consolidation",
		SupervisorID: &supervisorStr,
		Attachments:  []AttachmentInput{{UploadID: uploadID}},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	require.Len(t, f.repo.created, 1)
	created := f.repo.created[0]
	assert.Equal(t, StatusSubmitted, created.Status)
	assert.Equal(t, creator, created.CreatedByID)
	require.NotNil(t, created.SubmittedAt)

	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	assert.Equal(t, audit.ActionCreate, entry.Action)
	assert.Nil(t, entry.FromStatus)
	require.NotNil(t, entry.ToStatus)
	assert.Equal(t, string(StatusSubmitted), *entry.ToStatus)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, f.users.users[supervisor].Email, f.notifier.sent[0].recipient)
	assert.Contains(t, f.notifier.sent[0].subject, "Relocate warehouse stock")
}

func TestCreate_RejectsNonSupervisorSelection(t *testing.T) {
	f := newServiceFixture(t)
	creator := f.addUser(domain.RoleUser)
	notASupervisor := f.addUser(domain.RoleManager)
	raw := notASupervisor.String()

	_, err := f.service.Create(context.Background(), domain.Actor{ID: creator, Role: domain.RoleUser}, CreateTransferRequest{
		Title:        "Valid title",
		FromLocation: "A",
		ToLocation:   "B",
		SupervisorID: &raw,
	})
	assert.ErrorIs(t, err, transfererrors.ErrNotASupervisor)
	assert.Empty(t, f.repo.created)
}

func TestCreate_UnknownAttachmentRollsBack(t *testing.T) {
	f := newServiceFixture(t)
	creator := f.addUser(domain.RoleUser)
	f.uploads.allExist = false

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.service.Create(context.Background(), domain.Actor{ID: creator, Role: domain.RoleUser}, CreateTransferRequest{
		Title:        "Valid title",
		FromLocation: "A",
		ToLocation:   "B",
		Attachments:  []AttachmentInput{{UploadID: uuid.New().String()}},
	})
	assert.ErrorIs(t, err, transfererrors.ErrUnknownAttachment)
	assert.Empty(t, f.repo.created)
	assert.Empty(t, f.audit.entries)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestApprove_SupervisorMovesSubmittedForward(t *testing.T) {
	f := newServiceFixture(t)
	creator := f.addUser(domain.RoleUser)
	supervisor := f.addUser(domain.RoleSupervisor)
	requestID := uuid.New()

	f.stubRequest(&TransferRequest{
		ID:          requestID,
		Title:       "Office move",
		Status:      StatusSubmitted,
		CreatedByID: creator,
	})

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	summary, err := f.service.Approve(context.Background(),
		domain.Actor{ID: supervisor, Role: domain.RoleSupervisor},
		requestID.String(), ApproveRequest{Comment: "Looks fine"})
	require.NoError(t, err)
	assert.Equal(t, string(StatusSupervisorApproved), summary.Status)
	assert.Nil(t, summary.CompletedAt)

	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	assert.Equal(t, audit.ActionApprove, entry.Action)
	assert.Equal(t, string(StatusSubmitted), *entry.FromStatus)
	assert.Equal(t, string(StatusSupervisorApproved), *entry.ToStatus)

	require.Len(t, f.repo.comments, 1)
	assert.Equal(t, supervisor, f.repo.comments[0].AuthorID)
	assert.Equal(t, domain.RoleSupervisor, f.repo.comments[0].AuthorRole)

	// No manager assigned yet, so the creator hears about it.
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, f.users.users[creator].Email, f.notifier.sent[0].recipient)
}

func TestApprove_ManagerCompletesRequest(t *testing.T) {
	f := newServiceFixture(t)
	creator := f.addUser(domain.RoleUser)
	manager := f.addUser(domain.RoleManager)
	requestID := uuid.New()

	f.stubRequest(&TransferRequest{
		ID:          requestID,
		Title:       "Office move",
		Status:      StatusSupervisorApproved,
		CreatedByID: creator,
		ManagerID:   &manager,
	})

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	summary, err := f.service.Approve(context.Background(),
		domain.Actor{ID: manager, Role: domain.RoleManager},
		requestID.String(), ApproveRequest{})
	require.NoError(t, err)
	assert.Equal(t, string(StatusManagerApproved), summary.Status)
	require.NotNil(t, summary.CompletedAt)

	// No comment supplied, none written.
	assert.Empty(t, f.repo.comments)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, f.users.users[creator].Email, f.notifier.sent[0].recipient)
}

func TestApprove_OtherManagerForbidden(t *testing.T) {
	f := newServiceFixture(t)
	creator := f.addUser(domain.RoleUser)
	assigned := f.addUser(domain.RoleManager)
	other := f.addUser(domain.RoleManager)
	requestID := uuid.New()

	f.stubRequest(&TransferRequest{
		ID:          requestID,
		Status:      StatusSupervisorApproved,
		CreatedByID: creator,
		ManagerID:   &assigned,
	})

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.service.Approve(context.Background(),
		domain.Actor{ID: other, Role: domain.RoleManager},
		requestID.String(), ApproveRequest{})
	assert.ErrorIs(t, err, transfererrors.ErrNotAssignedManager)
	assert.Empty(t, f.audit.entries)
	assert.Empty(t, f.notifier.sent)
}

func TestApprove_TerminalStatusConflictPrecedesExclusivity(t *testing.T) {
	f := newServiceFixture(t)
	creator := f.addUser(domain.RoleUser)
	assigned := f.addUser(domain.RoleManager)
	other := f.addUser(domain.RoleManager)
	requestID := uuid.New()

	// Once the request left the manager gate, every manager gets the same
	// Conflict; the exclusivity check never fires on a dead request.
	f.stubRequest(&TransferRequest{
		ID:          requestID,
		Status:      StatusManagerApproved,
		CreatedByID: creator,
		ManagerID:   &assigned,
	})

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.service.Approve(context.Background(),
		domain.Actor{ID: other, Role: domain.RoleManager},
		requestID.String(), ApproveRequest{})
	assert.ErrorIs(t, err, transfererrors.ErrInvalidStateTransition)
	assert.NotErrorIs(t, err, transfererrors.ErrNotAssignedManager)
}

func TestApprove_LostRaceIsConflict(t *testing.T) {
	f := newServiceFixture(t)
	creator := f.addUser(domain.RoleUser)
	supervisor := f.addUser(domain.RoleSupervisor)
	requestID := uuid.New()

	f.stubRequest(&TransferRequest{
		ID:          requestID,
		Status:      StatusSubmitted,
		CreatedByID: creator,
	})
	// The conditional update matches nothing: a concurrent transition won.
	f.repo.transition = func(ctx context.Context, id uuid.UUID, from, to Status, completedAt *time.Time) (bool, error) {
		return false, nil
	}

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.service.Approve(context.Background(),
		domain.Actor{ID: supervisor, Role: domain.RoleSupervisor},
		requestID.String(), ApproveRequest{})
	assert.ErrorIs(t, err, transfererrors.ErrInvalidStateTransition)
	assert.Empty(t, f.audit.entries)
	assert.Empty(t, f.repo.comments)
	assert.Empty(t, f.notifier.sent)
}

func TestApprove_TerminalStatusIsConflict(t *testing.T) {
	f := newServiceFixture(t)
	supervisor := f.addUser(domain.RoleSupervisor)
	requestID := uuid.New()

	f.stubRequest(&TransferRequest{
		ID:     requestID,
		Status: StatusManagerApproved,
	})

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.service.Approve(context.Background(),
		domain.Actor{ID: supervisor, Role: domain.RoleSupervisor},
		requestID.String(), ApproveRequest{})
	assert.ErrorIs(t, err, transfererrors.ErrInvalidStateTransition)
}

func TestApprove_NotifierFailureDoesNotFailTransition(t *testing.T) {
	f := newServiceFixture(t)
	creator := f.addUser(domain.RoleUser)
	supervisor := f.addUser(domain.RoleSupervisor)
	requestID := uuid.New()

	f.stubRequest(&TransferRequest{
		ID:          requestID,
		Status:      StatusSubmitted,
		CreatedByID: creator,
	})
	f.notifier.failErr = errors.New("broker unavailable")

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	summary, err := f.service.Approve(context.Background(),
		domain.Actor{ID: supervisor, Role: domain.RoleSupervisor},
		requestID.String(), ApproveRequest{})
	require.NoError(t, err)
	assert.Equal(t, string(StatusSupervisorApproved), summary.Status)
	require.Len(t, f.audit.entries, 1)
}

func TestReject_RequiresComment(t *testing.T) {
	f := newServiceFixture(t)
	supervisor := f.addUser(domain.RoleSupervisor)

	_, err := f.service.Reject(context.Background(),
		domain.Actor{ID: supervisor, Role: domain.RoleSupervisor},
		uuid.New().String(), RejectRequest{})
	assert.ErrorIs(t, err, transfererrors.ErrCommentRequired)
}

func TestCommentOverTwoThousandRunesRejected(t *testing.T) {
	f := newServiceFixture(t)
	supervisor := f.addUser(domain.RoleSupervisor)
	actor := domain.Actor{ID: supervisor, Role: domain.RoleSupervisor}
	long := strings.Repeat("x", 2001)
	requestID := uuid.New().String()

	_, err := f.service.Reject(context.Background(), actor, requestID, RejectRequest{Comment: long})
	assert.ErrorIs(t, err, transfererrors.ErrCommentTooLong)

	_, err = f.service.RequestChanges(context.Background(), actor, requestID, RequestChangesRequest{Comment: long})
	assert.ErrorIs(t, err, transfererrors.ErrCommentTooLong)

	// The optional approve comment has the same upper bound.
	_, err = f.service.Approve(context.Background(), actor, requestID, ApproveRequest{Comment: long})
	assert.ErrorIs(t, err, transfererrors.ErrCommentTooLong)

	// The bound is runes, not bytes: 2000 multibyte characters pass the
	// length check and fail only later, on the missing request.
	_, err = f.service.Reject(context.Background(), actor, requestID, RejectRequest{Comment: strings.Repeat("ü", 2000)})
	assert.NotErrorIs(t, err, transfererrors.ErrCommentTooLong)

	assert.Empty(t, f.repo.comments)
	assert.Empty(t, f.audit.entries)
}

func TestCreate_AttachmentCap(t *testing.T) {
	f := newServiceFixture(t)
	creator := f.addUser(domain.RoleUser)

	atts := make([]AttachmentInput, 11)
	for i := range atts {
		atts[i] = AttachmentInput{UploadID: uuid.New().String()}
	}

	_, err := f.service.Create(context.Background(), domain.Actor{ID: creator, Role: domain.RoleUser}, CreateTransferRequest{
		Title:        "Valid title",
		FromLocation: "A",
		ToLocation:   "B",
		Attachments:  atts,
	})
	assert.ErrorIs(t, err, transfererrors.ErrTooManyAttachments)
	assert.Empty(t, f.repo.created)
}

func TestReject_SupervisorTerminatesRequest(t *testing.T) {
	f := newServiceFixture(t)
	creator := f.addUser(domain.RoleUser)
	supervisor := f.addUser(domain.RoleSupervisor)
	requestID := uuid.New()

	f.stubRequest(&TransferRequest{
		ID:          requestID,
		Title:       "Office move",
		Status:      StatusSubmitted,
		CreatedByID: creator,
	})

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	summary, err := f.service.Reject(context.Background(),
		domain.Actor{ID: supervisor, Role: domain.RoleSupervisor},
		requestID.String(), RejectRequest{Comment: "Budget exhausted this quarter"})
	require.NoError(t, err)
	assert.Equal(t, string(StatusSupervisorRejected), summary.Status)
	require.NotNil(t, summary.CompletedAt)

	require.Len(t, f.repo.comments, 1)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, f.users.users[creator].Email, f.notifier.sent[0].recipient)
}

func TestRequestChanges_SupervisorOnlyFromSubmitted(t *testing.T) {
	f := newServiceFixture(t)
	supervisor := f.addUser(domain.RoleSupervisor)
	requestID := uuid.New()

	// Already parked for changes: asking again is not a legal move.
	f.stubRequest(&TransferRequest{
		ID:     requestID,
		Status: StatusSupervisorChangesRequested,
	})

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.service.RequestChanges(context.Background(),
		domain.Actor{ID: supervisor, Role: domain.RoleSupervisor},
		requestID.String(), RequestChangesRequest{Comment: "Please add the cost estimate"})
	assert.ErrorIs(t, err, transfererrors.ErrInvalidStateTransition)
}

func TestRequestChanges_ManagerParksRequest(t *testing.T) {
	f := newServiceFixture(t)
	creator := f.addUser(domain.RoleUser)
	manager := f.addUser(domain.RoleManager)
	requestID := uuid.New()

	f.stubRequest(&TransferRequest{
		ID:          requestID,
		Status:      StatusSupervisorApproved,
		CreatedByID: creator,
	})

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	summary, err := f.service.RequestChanges(context.Background(),
		domain.Actor{ID: manager, Role: domain.RoleManager},
		requestID.String(), RequestChangesRequest{Comment: "Need sign-off from finance"})
	require.NoError(t, err)
	assert.Equal(t, string(StatusManagerChangesRequested), summary.Status)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, f.users.users[creator].Email, f.notifier.sent[0].recipient)
}

func TestResubmit_OwnerOnly(t *testing.T) {
	f := newServiceFixture(t)
	creator := f.addUser(domain.RoleUser)
	stranger := f.addUser(domain.RoleUser)
	requestID := uuid.New()

	f.stubRequest(&TransferRequest{
		ID:          requestID,
		Status:      StatusSupervisorChangesRequested,
		CreatedByID: creator,
	})

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.service.Resubmit(context.Background(),
		domain.Actor{ID: stranger, Role: domain.RoleUser},
		requestID.String(), ResubmitTransferRequest{
			Title:        "Corrected title",
			FromLocation: "A",
			ToLocation:   "B",
		})
	assert.ErrorIs(t, err, transfererrors.ErrNotRequestOwner)
}

func TestResubmit_ReturnsToSubmittedAndReplacesAttachments(t *testing.T) {
	f := newServiceFixture(t)
	creator := f.addUser(domain.RoleUser)

	for _, from := range []Status{StatusSupervisorChangesRequested, StatusManagerChangesRequested} {
		f.repo.replacements = nil
		f.audit.entries = nil
		requestID := uuid.New()

		f.stubRequest(&TransferRequest{
			ID:          requestID,
			Status:      from,
			CreatedByID: creator,
		})

		f.mock.ExpectBegin()
		f.mock.ExpectCommit()

		summary, err := f.service.Resubmit(context.Background(),
			domain.Actor{ID: creator, Role: domain.RoleUser},
			requestID.String(), ResubmitTransferRequest{
				Title:        "Corrected title",
				FromLocation: "A",
				ToLocation:   "B",
				Attachments:  []AttachmentInput{{UploadID: uuid.New().String()}},
			})
		require.NoError(t, err, "from %s", from)
		assert.Equal(t, string(StatusSubmitted), summary.Status)
		require.NotNil(t, summary.SubmittedAt)

		require.Len(t, f.repo.replacements, 1)
		assert.Len(t, f.repo.replacements[0], 1)

		require.Len(t, f.audit.entries, 1)
		entry := f.audit.entries[0]
		assert.Equal(t, audit.ActionResubmit, entry.Action)
		assert.Equal(t, string(from), *entry.FromStatus)
		assert.Equal(t, string(StatusSubmitted), *entry.ToStatus)
	}

	// Resubmission routes back into the supervisor queue silently.
	assert.Empty(t, f.notifier.sent)
}

func TestResubmit_FromSubmittedIsConflict(t *testing.T) {
	f := newServiceFixture(t)
	creator := f.addUser(domain.RoleUser)
	requestID := uuid.New()

	f.stubRequest(&TransferRequest{
		ID:          requestID,
		Status:      StatusSubmitted,
		CreatedByID: creator,
	})

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.service.Resubmit(context.Background(),
		domain.Actor{ID: creator, Role: domain.RoleUser},
		requestID.String(), ResubmitTransferRequest{
			Title:        "Corrected title",
			FromLocation: "A",
			ToLocation:   "B",
		})
	assert.ErrorIs(t, err, transfererrors.ErrInvalidStateTransition)
}

func TestAssignManager_KeepsStatus(t *testing.T) {
	f := newServiceFixture(t)
	creator := f.addUser(domain.RoleUser)
	supervisor := f.addUser(domain.RoleSupervisor)
	manager := f.addUser(domain.RoleManager)
	requestID := uuid.New()

	f.stubRequest(&TransferRequest{
		ID:          requestID,
		Status:      StatusSupervisorApproved,
		CreatedByID: creator,
	})

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	summary, err := f.service.AssignManager(context.Background(),
		domain.Actor{ID: supervisor, Role: domain.RoleSupervisor},
		requestID.String(), AssignManagerRequest{ManagerID: manager.String()})
	require.NoError(t, err)
	assert.Equal(t, string(StatusSupervisorApproved), summary.Status)
	require.NotNil(t, summary.ManagerID)
	assert.Equal(t, manager.String(), *summary.ManagerID)

	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	assert.Equal(t, audit.ActionAssignManager, entry.Action)
	require.NotNil(t, entry.FromStatus)
	require.NotNil(t, entry.ToStatus)
	assert.Equal(t, *entry.FromStatus, *entry.ToStatus)

	assert.Empty(t, f.notifier.sent)
}

func TestAssignManager_SupervisorRoleRequired(t *testing.T) {
	f := newServiceFixture(t)
	manager := f.addUser(domain.RoleManager)

	_, err := f.service.AssignManager(context.Background(),
		domain.Actor{ID: manager, Role: domain.RoleManager},
		uuid.New().String(), AssignManagerRequest{ManagerID: uuid.New().String()})
	assert.ErrorIs(t, err, transfererrors.ErrSupervisorRoleRequired)
}

func TestAssignManager_TargetMustHoldManagerRole(t *testing.T) {
	f := newServiceFixture(t)
	supervisor := f.addUser(domain.RoleSupervisor)
	notManager := f.addUser(domain.RoleUser)

	_, err := f.service.AssignManager(context.Background(),
		domain.Actor{ID: supervisor, Role: domain.RoleSupervisor},
		uuid.New().String(), AssignManagerRequest{ManagerID: notManager.String()})
	assert.ErrorIs(t, err, transfererrors.ErrNotAManager)
}

func TestList_UserPinnedToOwnRequests(t *testing.T) {
	f := newServiceFixture(t)
	creator := f.addUser(domain.RoleUser)

	_, _, err := f.service.List(context.Background(),
		domain.Actor{ID: creator, Role: domain.RoleUser},
		ListTransferQuery{Page: 1, Limit: 10})
	require.NoError(t, err)

	require.Len(t, f.repo.listFilters, 1)
	filter := f.repo.listFilters[0]
	require.NotNil(t, filter.CreatedByID)
	assert.Equal(t, creator, *filter.CreatedByID)
}

func TestList_TabNewMapsToOwnGate(t *testing.T) {
	f := newServiceFixture(t)
	supervisor := f.addUser(domain.RoleSupervisor)
	manager := f.addUser(domain.RoleManager)

	_, _, err := f.service.List(context.Background(),
		domain.Actor{ID: supervisor, Role: domain.RoleSupervisor},
		ListTransferQuery{Tab: "new", Page: 1, Limit: 10})
	require.NoError(t, err)

	_, _, err = f.service.List(context.Background(),
		domain.Actor{ID: manager, Role: domain.RoleManager},
		ListTransferQuery{Tab: "new", Page: 1, Limit: 10})
	require.NoError(t, err)

	require.Len(t, f.repo.listFilters, 2)
	assert.Equal(t,
		[]Status{StatusSubmitted, StatusSupervisorChangesRequested},
		f.repo.listFilters[0].Statuses)
	assert.Equal(t,
		[]Status{StatusSupervisorApproved, StatusManagerChangesRequested},
		f.repo.listFilters[1].Statuses)
	// Approvers are not scoped to a creator.
	assert.Nil(t, f.repo.listFilters[0].CreatedByID)
	assert.Nil(t, f.repo.listFilters[1].CreatedByID)
}

func TestList_TabCompleted(t *testing.T) {
	f := newServiceFixture(t)
	manager := f.addUser(domain.RoleManager)

	_, _, err := f.service.List(context.Background(),
		domain.Actor{ID: manager, Role: domain.RoleManager},
		ListTransferQuery{Tab: "completed", Page: 1, Limit: 10})
	require.NoError(t, err)

	require.Len(t, f.repo.listFilters, 1)
	assert.Equal(t,
		[]Status{StatusManagerApproved, StatusManagerRejected},
		f.repo.listFilters[0].Statuses)
}

func TestList_InvalidStatusFilter(t *testing.T) {
	f := newServiceFixture(t)
	supervisor := f.addUser(domain.RoleSupervisor)

	_, _, err := f.service.List(context.Background(),
		domain.Actor{ID: supervisor, Role: domain.RoleSupervisor},
		ListTransferQuery{Status: "Nonsense", Page: 1, Limit: 10})
	assert.ErrorIs(t, err, transfererrors.ErrInvalidStatusFilter)
}

func TestList_LimitCapped(t *testing.T) {
	f := newServiceFixture(t)
	supervisor := f.addUser(domain.RoleSupervisor)

	_, _, err := f.service.List(context.Background(),
		domain.Actor{ID: supervisor, Role: domain.RoleSupervisor},
		ListTransferQuery{Page: 1, Limit: 500})
	require.NoError(t, err)

	require.Len(t, f.repo.listFilters, 1)
	assert.Equal(t, 100, f.repo.listFilters[0].Limit)
}

func TestStats_AggregatesAuditCounts(t *testing.T) {
	f := newServiceFixture(t)
	f.audit.counts = map[string]int64{
		audit.ActionCreate:  12,
		audit.ActionApprove: 7,
		audit.ActionReject:  3,
	}

	stats, err := f.service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.Created)
	assert.Equal(t, int64(7), stats.Approved)
	assert.Equal(t, int64(3), stats.Rejected)
}

func TestGetByID_UserCannotSeeOthersRequest(t *testing.T) {
	f := newServiceFixture(t)
	creator := f.addUser(domain.RoleUser)
	stranger := f.addUser(domain.RoleUser)
	requestID := uuid.New()

	f.stubRequest(&TransferRequest{
		ID:          requestID,
		Status:      StatusSubmitted,
		CreatedByID: creator,
	})

	// Hidden requests answer NotFound so their existence does not leak.
	_, err := f.service.GetByID(context.Background(),
		domain.Actor{ID: stranger, Role: domain.RoleUser},
		requestID.String())
	assert.ErrorIs(t, err, transfererrors.ErrRequestNotFound)
}
