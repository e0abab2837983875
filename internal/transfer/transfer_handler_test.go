package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"transferdesk/internal/domain"
	"transferdesk/internal/shared/response"
	transfererrors "transferdesk/internal/transfer/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeService struct {
	create         func(ctx context.Context, actor domain.Actor, req CreateTransferRequest) (*CreateTransferResponse, error)
	list           func(ctx context.Context, actor domain.Actor, q ListTransferQuery) ([]TransferSummary, int64, error)
	getByID        func(ctx context.Context, actor domain.Actor, id string) (*TransferDetail, error)
	approve        func(ctx context.Context, actor domain.Actor, id string, req ApproveRequest) (*TransferSummary, error)
	reject         func(ctx context.Context, actor domain.Actor, id string, req RejectRequest) (*TransferSummary, error)
	requestChanges func(ctx context.Context, actor domain.Actor, id string, req RequestChangesRequest) (*TransferSummary, error)
	resubmit       func(ctx context.Context, actor domain.Actor, id string, req ResubmitTransferRequest) (*TransferSummary, error)
	assignManager  func(ctx context.Context, actor domain.Actor, id string, req AssignManagerRequest) (*TransferSummary, error)
	stats          func(ctx context.Context) (*StatsResponse, error)
}

func (f *fakeService) Create(ctx context.Context, actor domain.Actor, req CreateTransferRequest) (*CreateTransferResponse, error) {
	return f.create(ctx, actor, req)
}

func (f *fakeService) List(ctx context.Context, actor domain.Actor, q ListTransferQuery) ([]TransferSummary, int64, error) {
	return f.list(ctx, actor, q)
}

func (f *fakeService) GetByID(ctx context.Context, actor domain.Actor, id string) (*TransferDetail, error) {
	return f.getByID(ctx, actor, id)
}

func (f *fakeService) Approve(ctx context.Context, actor domain.Actor, id string, req ApproveRequest) (*TransferSummary, error) {
	return f.approve(ctx, actor, id, req)
}

func (f *fakeService) Reject(ctx context.Context, actor domain.Actor, id string, req RejectRequest) (*TransferSummary, error) {
	return f.reject(ctx, actor, id, req)
}

func (f *fakeService) RequestChanges(ctx context.Context, actor domain.Actor, id string, req RequestChangesRequest) (*TransferSummary, error) {
	return f.requestChanges(ctx, actor, id, req)
}

func (f *fakeService) Resubmit(ctx context.Context, actor domain.Actor, id string, req ResubmitTransferRequest) (*TransferSummary, error) {
	return f.resubmit(ctx, actor, id, req)
}

func (f *fakeService) AssignManager(ctx context.Context, actor domain.Actor, id string, req AssignManagerRequest) (*TransferSummary, error) {
	return f.assignManager(ctx, actor, id, req)
}

func (f *fakeService) Stats(ctx context.Context) (*StatsResponse, error) {
	return f.stats(ctx)
}

// newTestRouter wires the handler behind a stub auth layer that injects the
// given identity, mirroring what the JWT middleware stores.
func newTestRouter(svc Service, userID uuid.UUID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Set("role", role)
	})

	h := NewHandler(svc, nil, zap.NewNop())
	r.POST("/transfer-requests", h.Create)
	r.GET("/transfer-requests", h.List)
	r.GET("/transfer-requests/stats", h.Stats)
	r.GET("/transfer-requests/:id", h.GetByID)
	r.POST("/transfer-requests/:id/approve", h.Approve)
	r.POST("/transfer-requests/:id/reject", h.Reject)
	r.POST("/transfer-requests/:id/request-changes", h.RequestChanges)
	r.POST("/transfer-requests/:id/resubmit", h.Resubmit)
	r.POST("/transfer-requests/:id/assign-manager", h.AssignManager)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.ApiEnvelope {
	t.Helper()
	var envelope response.ApiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestHandlerCreate_ReturnsCreatedID(t *testing.T) {
	userID := uuid.New()
	created := uuid.New().String()
	svc := &fakeService{
		create: func(ctx context.Context, actor domain.Actor, req CreateTransferRequest) (*CreateTransferResponse, error) {
			assert.Equal(t, userID, actor.ID)
			assert.Equal(t, domain.RoleUser, actor.Role)
			return &CreateTransferResponse{ID: created}, nil
		},
	}
	r := newTestRouter(svc, userID, domain.RoleUser)

	w := doJSON(t, r, http.MethodPost, "/transfer-requests", gin.H{
		"title":        "Move the archive",
		"fromLocation": "Basement",
		"toLocation":   "Offsite storage",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.True(t, envelope.Ok)
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, created, data["id"])
}

func TestHandlerCreate_ValidationFailure(t *testing.T) {
	svc := &fakeService{
		create: func(ctx context.Context, actor domain.Actor, req CreateTransferRequest) (*CreateTransferResponse, error) {
			t.Fatal("service must not be called on invalid input")
			return nil, nil
		},
	}
	r := newTestRouter(svc, uuid.New(), domain.RoleUser)

	// Title below the minimum length.
	w := doJSON(t, r, http.MethodPost, "/transfer-requests", gin.H{
		"title":        "ab",
		"fromLocation": "A",
		"toLocation":   "B",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.False(t, envelope.Ok)
}

func TestHandlerApprove_ConflictMapsTo409(t *testing.T) {
	svc := &fakeService{
		approve: func(ctx context.Context, actor domain.Actor, id string, req ApproveRequest) (*TransferSummary, error) {
			return nil, transfererrors.ErrInvalidStateTransition
		},
	}
	r := newTestRouter(svc, uuid.New(), domain.RoleSupervisor)

	w := doJSON(t, r, http.MethodPost, "/transfer-requests/"+uuid.New().String()+"/approve", gin.H{})

	assert.Equal(t, http.StatusConflict, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.False(t, envelope.Ok)
}

func TestHandlerReject_MissingCommentRejectedAtBinding(t *testing.T) {
	svc := &fakeService{
		reject: func(ctx context.Context, actor domain.Actor, id string, req RejectRequest) (*TransferSummary, error) {
			t.Fatal("service must not be called on invalid input")
			return nil, nil
		},
	}
	r := newTestRouter(svc, uuid.New(), domain.RoleSupervisor)

	w := doJSON(t, r, http.MethodPost, "/transfer-requests/"+uuid.New().String()+"/reject", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerList_EnvelopeCarriesPagination(t *testing.T) {
	svc := &fakeService{
		list: func(ctx context.Context, actor domain.Actor, q ListTransferQuery) ([]TransferSummary, int64, error) {
			assert.Equal(t, 2, q.Page)
			assert.Equal(t, 10, q.Limit)
			return []TransferSummary{{ID: uuid.New().String(), Title: "One"}}, 23, nil
		},
	}
	r := newTestRouter(svc, uuid.New(), domain.RoleSupervisor)

	w := doJSON(t, r, http.MethodGet, "/transfer-requests?page=2", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Meta)
	assert.Equal(t, int64(23), envelope.Meta.Total)
	assert.Equal(t, 2, envelope.Meta.Page)
	assert.Equal(t, 3, envelope.Meta.TotalPages)
}

func TestHandlerGetByID_NotFoundMapsTo404(t *testing.T) {
	svc := &fakeService{
		getByID: func(ctx context.Context, actor domain.Actor, id string) (*TransferDetail, error) {
			return nil, transfererrors.ErrRequestNotFound
		},
	}
	r := newTestRouter(svc, uuid.New(), domain.RoleUser)

	w := doJSON(t, r, http.MethodGet, "/transfer-requests/"+uuid.New().String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerAssignManager_ForbiddenMapsTo403(t *testing.T) {
	svc := &fakeService{
		assignManager: func(ctx context.Context, actor domain.Actor, id string, req AssignManagerRequest) (*TransferSummary, error) {
			return nil, transfererrors.ErrSupervisorRoleRequired
		},
	}
	r := newTestRouter(svc, uuid.New(), domain.RoleManager)

	w := doJSON(t, r, http.MethodPost, "/transfer-requests/"+uuid.New().String()+"/assign-manager", gin.H{
		"managerId": uuid.New().String(),
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandlerStats_ReturnsCounts(t *testing.T) {
	svc := &fakeService{
		stats: func(ctx context.Context) (*StatsResponse, error) {
			return &StatsResponse{Created: 5, Approved: 2, Rejected: 1}, nil
		},
	}
	r := newTestRouter(svc, uuid.New(), domain.RoleSupervisor)

	w := doJSON(t, r, http.MethodGet, "/transfer-requests/stats", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(5), data["created"])
}
