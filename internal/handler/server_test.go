package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/rail-log/backend/internal/domain"
	"github.com/pkordes/rail-log/backend/internal/handler"
	"github.com/pkordes/rail-log/backend/internal/service"
)

// mockRideServicer implements handler.RideServicer with overridable functions,
// so each test configures only the behavior it needs.
type mockRideServicer struct {
	createFn      func(ctx context.Context, rec domain.RideRecord) (domain.RideRecord, error)
	getByIDFn     func(ctx context.Context, userID, id uuid.UUID) (domain.RideRecord, error)
	listFn        func(ctx context.Context, userID uuid.UUID, search string, p domain.PaginationParams) ([]domain.RideRecord, int64, error)
	updateFn      func(ctx context.Context, rec domain.RideRecord) (domain.RideRecord, error)
	deleteFn      func(ctx context.Context, userID, id uuid.UUID) error
	newDraftFn    func(ctx context.Context, userID uuid.UUID, today time.Time) (domain.RideRecord, error)
	suggestionsFn func(ctx context.Context, userID uuid.UUID) (domain.Suggestions, error)
}

var _ handler.RideServicer = (*mockRideServicer)(nil)

func (m *mockRideServicer) Create(ctx context.Context, rec domain.RideRecord) (domain.RideRecord, error) {
	return m.createFn(ctx, rec)
}

func (m *mockRideServicer) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.RideRecord, error) {
	return m.getByIDFn(ctx, userID, id)
}

func (m *mockRideServicer) List(ctx context.Context, userID uuid.UUID, search string, p domain.PaginationParams) ([]domain.RideRecord, int64, error) {
	return m.listFn(ctx, userID, search, p)
}

func (m *mockRideServicer) Update(ctx context.Context, rec domain.RideRecord) (domain.RideRecord, error) {
	return m.updateFn(ctx, rec)
}

func (m *mockRideServicer) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.deleteFn(ctx, userID, id)
}

func (m *mockRideServicer) NewDraft(ctx context.Context, userID uuid.UUID, today time.Time) (domain.RideRecord, error) {
	return m.newDraftFn(ctx, userID, today)
}

func (m *mockRideServicer) Suggestions(ctx context.Context, userID uuid.UUID) (domain.Suggestions, error) {
	return m.suggestionsFn(ctx, userID)
}

// mockAutofillServicer implements handler.AutofillServicer.
type mockAutofillServicer struct {
	autofillFn func(ctx context.Context, req service.AutofillRequest) (service.AutofillResult, error)
}

var _ handler.AutofillServicer = (*mockAutofillServicer)(nil)

func (m *mockAutofillServicer) Autofill(ctx context.Context, req service.AutofillRequest) (service.AutofillResult, error) {
	return m.autofillFn(ctx, req)
}

// newTestRouter mounts a Server backed by the given mocks on a fresh router.
func newTestRouter(rides handler.RideServicer, autofill handler.AutofillServicer) http.Handler {
	r := chi.NewRouter()
	handler.NewServer(rides, autofill).Routes(r)
	return r
}

// doRequest performs a request with the owner header set and returns the recorder.
func doRequest(t *testing.T, h http.Handler, method, target, body string, userID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != uuid.Nil {
		req.Header.Set("X-User-ID", userID.String())
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_missingUserHeader(t *testing.T) {
	h := newTestRouter(&mockRideServicer{}, &mockAutofillServicer{})

	for _, target := range []string{"/api/rides", "/api/suggestions", "/api/rides/new"} {
		rec := doRequest(t, h, http.MethodGet, target, "", uuid.Nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, target)
		require.Contains(t, rec.Body.String(), "unauthorized")
	}
}

func TestGetHealth(t *testing.T) {
	h := newTestRouter(&mockRideServicer{}, &mockAutofillServicer{})

	rec := doRequest(t, h, http.MethodGet, "/healthz", "", uuid.Nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
