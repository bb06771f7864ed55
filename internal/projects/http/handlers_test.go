package http

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bid2Bid/bid2bid-backend/internal/auth"
	"github.com/Bid2Bid/bid2bid-backend/internal/draft"
	"github.com/Bid2Bid/bid2bid-backend/internal/projects/domain"
	"github.com/Bid2Bid/bid2bid-backend/internal/projects/repository"
	"github.com/Bid2Bid/bid2bid-backend/internal/projects/service"
)

type fixedEntitlements bool

func (f fixedEntitlements) Subscribed(ctx context.Context, userID string) bool {
	return bool(f)
}

func setupRouter(t *testing.T, subscribed bool) (*gin.Engine, sqlmock.Sqlmock, *sql.DB) {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := service.NewProjectService(
		repository.NewProjectStore(db),
		fixedEntitlements(subscribed),
	)
	h := NewHandler(svc)

	r := gin.New()
	rg := r.Group("/api/v1", func(c *gin.Context) {
		c.Set(auth.CtxFirebaseUID, "user-1")
	})
	h.Register(rg)
	return r, mock, db
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestCreateProjectEndpoint(t *testing.T) {
	r, mock, _ := setupRouter(t, false)

	mock.ExpectQuery(`INSERT INTO projects`).
		WithArgs("Deck", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "user_id", "created_at", "updated_at"}).
			AddRow("p-1", "Deck", "user-1", time.Now(), time.Now()))

	w := doJSON(r, http.MethodPost, "/api/v1/projects", `{"name": "Deck"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProjectRequiresName(t *testing.T) {
	r, mock, _ := setupRouter(t, false)

	w := doJSON(r, http.MethodPost, "/api/v1/projects", `{"name": "   "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), draft.ErrNameRequired.Error())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProjectNotFound(t *testing.T) {
	r, mock, _ := setupRouter(t, false)

	mock.ExpectQuery(`SELECT id, name, user_id`).
		WithArgs("p-404", "user-1").
		WillReturnError(sql.ErrNoRows)

	w := doJSON(r, http.MethodGet, "/api/v1/projects/p-404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRejectsNewShareWithoutEntitlement(t *testing.T) {
	r, mock, _ := setupRouter(t, false)

	body := `{
		"project_id": "p-1",
		"name": "Deck",
		"vendors": [{"id": "v-1", "vendor_name": "Acme Co"}],
		"shared_emails": ["friend@x.com"]
	}`

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE projects`).
		WithArgs("p-1", "user-1", "Deck").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "user_id", "created_at", "updated_at"}).
			AddRow("p-1", "Deck", "user-1", now, now))
	mock.ExpectQuery(`INSERT INTO vendors`).
		WithArgs("v-1", "p-1", "Acme Co", nil, nil, nil, 0.0, false).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "project_id", "vendor_name", "phone_number", "start_date",
			"job_duration", "total_cost", "is_favorite", "created_at",
		}).AddRow("v-1", "p-1", "Acme Co", "", nil, "", 0.0, false, now))
	mock.ExpectExec(`DELETE FROM vendors`).
		WithArgs("p-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT shared_with_email FROM project_shares`).
		WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows([]string{"shared_with_email"}))
	mock.ExpectRollback()

	w := doJSON(r, http.MethodPut, "/api/v1/projects/p-1", body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "upgrade_required")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveValidationErrorIs422(t *testing.T) {
	r, mock, _ := setupRouter(t, false)

	body := `{
		"project_id": "p-1",
		"name": "",
		"vendors": [{"id": "v-1", "vendor_name": "Acme Co"}]
	}`

	w := doJSON(r, http.MethodPut, "/api/v1/projects/p-1", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveIncludesDisplayCost(t *testing.T) {
	r, mock, _ := setupRouter(t, false)

	body := `{
		"project_id": "p-1",
		"name": "Deck",
		"vendors": [{"id": "v-1", "vendor_name": "Acme Co", "total_cost": "1234.5"}]
	}`

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE projects`).
		WithArgs("p-1", "user-1", "Deck").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "user_id", "created_at", "updated_at"}).
			AddRow("p-1", "Deck", "user-1", now, now))
	mock.ExpectQuery(`INSERT INTO vendors`).
		WithArgs("v-1", "p-1", "Acme Co", nil, nil, nil, 1234.5, false).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "project_id", "vendor_name", "phone_number", "start_date",
			"job_duration", "total_cost", "is_favorite", "created_at",
		}).AddRow("v-1", "p-1", "Acme Co", "", nil, "", 1234.5, false, now))
	mock.ExpectExec(`DELETE FROM vendors`).
		WithArgs("p-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT shared_with_email FROM project_shares`).
		WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows([]string{"shared_with_email"}))
	mock.ExpectQuery(`SELECT project_id, owner_id, shared_with_email, permission_level`).
		WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows([]string{"project_id", "owner_id", "shared_with_email", "permission_level"}))
	mock.ExpectCommit()

	w := doJSON(r, http.MethodPut, "/api/v1/projects/p-1", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_cost_display":"$1,234.50"`)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProject(t *testing.T) {
	r, mock, _ := setupRouter(t, false)

	mock.ExpectExec(`DELETE FROM projects`).
		WithArgs("p-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(r, http.MethodDelete, "/api/v1/projects/p-1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	mock.ExpectExec(`DELETE FROM projects`).
		WithArgs("p-404", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	w = doJSON(r, http.MethodDelete, "/api/v1/projects/p-404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), domain.ErrNotFound.Error())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveFavoriteEndpoint(t *testing.T) {
	r, mock, _ := setupRouter(t, false)

	mock.ExpectExec(`UPDATE vendors`).
		WithArgs("v-404", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := doJSON(r, http.MethodDelete, "/api/v1/favorites/v-404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}
