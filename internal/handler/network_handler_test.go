package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/PauloHelder/thronus01-sub002/internal/hierarchy"
	"github.com/PauloHelder/thronus01-sub002/internal/model"
	"github.com/PauloHelder/thronus01-sub002/internal/repository"
	"github.com/PauloHelder/thronus01-sub002/internal/service"
	"github.com/PauloHelder/thronus01-sub002/pkg/config"
	"github.com/PauloHelder/thronus01-sub002/pkg/jwtutil"
	"github.com/PauloHelder/thronus01-sub002/prometheus"
)

func TestMain(m *testing.M) {
	prometheus.InitMetrics(&config.Config{Metrics: config.MetricsConfig{Prefix: "church"}})
	os.Exit(m.Run())
}

type stubChurchRepo struct {
	churches map[uint]*model.Church
}

func newStubChurchRepo(churches ...*model.Church) *stubChurchRepo {
	repo := &stubChurchRepo{churches: make(map[uint]*model.Church)}
	for _, ch := range churches {
		repo.churches[ch.ID] = ch
	}
	return repo
}

func (r *stubChurchRepo) GetByID(_ context.Context, id uint) (*model.Church, error) {
	ch, ok := r.churches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *ch
	return &copied, nil
}

func (r *stubChurchRepo) GetByCode(_ context.Context, code string) (*model.Church, error) {
	for _, ch := range r.churches {
		if ch.Code == code {
			copied := *ch
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubChurchRepo) SetParent(_ context.Context, childID, parentID uint, category hierarchy.Category, flags model.PermissionFlags) error {
	ch, ok := r.churches[childID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	ch.ParentID = &parentID
	ch.Category = category
	ch.Permissions = flags
	return nil
}

func (r *stubChurchRepo) ClearParent(_ context.Context, childID uint, resetCategory bool, category hierarchy.Category) error {
	ch, ok := r.churches[childID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	ch.ParentID = nil
	if resetCategory {
		ch.Category = category
	}
	return nil
}

func (r *stubChurchRepo) SetPermissions(_ context.Context, childID uint, flags model.PermissionFlags) error {
	ch, ok := r.churches[childID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	ch.Permissions = flags
	return nil
}

func (r *stubChurchRepo) ListChildren(_ context.Context, parentID uint) ([]model.Church, error) {
	var out []model.Church
	for _, ch := range r.churches {
		if ch.ParentID != nil && *ch.ParentID == parentID {
			out = append(out, *ch)
		}
	}
	return out, nil
}

type stubAggregateRepo struct {
	members int64
}

func (r *stubAggregateRepo) MemberCount(_ context.Context, _ uint) (int64, error) {
	return r.members, nil
}

func (r *stubAggregateRepo) DepartmentCount(_ context.Context, _ uint) (int64, error) {
	return 3, nil
}

func (r *stubAggregateRepo) UpcomingEventCount(_ context.Context, _ uint) (int64, error) {
	return 2, nil
}

func (r *stubAggregateRepo) ServiceStats(_ context.Context, _ uint, _ int) ([]repository.ServiceStatsRow, error) {
	return []repository.ServiceStatsRow{{Date: "2025-06-01", Attendance: 80}}, nil
}

func newTestHandler(churches *stubChurchRepo) *NetworkHandler {
	network := service.NewNetworkService(churches, true, nil)
	gate := service.NewAggregateService(&stubAggregateRepo{members: 42}, nil)
	return NewNetworkHandler(network, gate, churches)
}

func doRequest(t *testing.T, h echo.HandlerFunc, method, target, body string, churchID uint, pathParams map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	names := make([]string, 0, len(pathParams))
	values := make([]string, 0, len(pathParams))
	for name, value := range pathParams {
		names = append(names, name)
		values = append(values, value)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	c.Set("user", &jwtutil.UserClaims{
		Email:    "pastor@example.com",
		UserID:   1,
		ChurchID: &churchID,
		Role:     "admin",
	})

	require.NoError(t, h(c))
	return rec
}

func TestFindCandidate(t *testing.T) {
	repo := newStubChurchRepo(
		&model.Church{ID: 1, Name: "Sede Central", Code: "sp-a1b2", Category: hierarchy.CategorySede},
		&model.Church{ID: 2, Name: "Congregação Leste", Code: "sp-c3d4", Category: hierarchy.CategoryCongregacao},
	)
	h := newTestHandler(repo)

	t.Run("returns the reduced candidate view", func(t *testing.T) {
		rec := doRequest(t, h.FindCandidate, http.MethodGet, "/network/candidate?code=sp-a1b2", "", 2, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Candidate candidateResponse `json:"candidate"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, uint(1), resp.Candidate.ID)
		assert.Equal(t, "sp-a1b2", resp.Candidate.Code)
		assert.Equal(t, hierarchy.CategorySede, resp.Candidate.Category)
		assert.NotContains(t, rec.Body.String(), "permissions")
	})

	t.Run("unknown code yields 404", func(t *testing.T) {
		rec := doRequest(t, h.FindCandidate, http.MethodGet, "/network/candidate?code=nope", "", 2, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("own code yields 422", func(t *testing.T) {
		rec := doRequest(t, h.FindCandidate, http.MethodGet, "/network/candidate?code=sp-c3d4", "", 2, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestEligibleCategories(t *testing.T) {
	repo := newStubChurchRepo(
		&model.Church{ID: 1, Name: "Sede Central", Code: "sp-a1b2", Category: hierarchy.CategorySede},
		&model.Church{ID: 2, Name: "Ponto Norte", Code: "sp-e5f6", Category: hierarchy.CategoryPontoOracao},
	)
	h := newTestHandler(repo)

	t.Run("lists categories beneath the candidate", func(t *testing.T) {
		rec := doRequest(t, h.EligibleCategories, http.MethodGet, "/network/candidate/1/categories", "", 3,
			map[string]string{"id": "1"})

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Categories []hierarchy.Category `json:"categories"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Categories, hierarchy.CategoryMinisterio)
		assert.NotContains(t, resp.Categories, hierarchy.CategorySede)
	})

	t.Run("lowest rank candidate yields 422", func(t *testing.T) {
		rec := doRequest(t, h.EligibleCategories, http.MethodGet, "/network/candidate/2/categories", "", 3,
			map[string]string{"id": "2"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("unknown candidate yields 404", func(t *testing.T) {
		rec := doRequest(t, h.EligibleCategories, http.MethodGet, "/network/candidate/99/categories", "", 3,
			map[string]string{"id": "99"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestConfirmLink(t *testing.T) {
	t.Run("links under the parent and persists category and flags", func(t *testing.T) {
		repo := newStubChurchRepo(
			&model.Church{ID: 1, Name: "Sede Central", Code: "sp-a1b2", Category: hierarchy.CategorySede},
			&model.Church{ID: 2, Name: "Congregação Leste", Code: "sp-c3d4", Category: hierarchy.CategoryCongregacao},
		)
		h := newTestHandler(repo)

		body := `{"parent_id":1,"category":"Congregação","permissions":{"view_members":true}}`
		rec := doRequest(t, h.ConfirmLink, http.MethodPost, "/network/link", body, 2, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		stored := repo.churches[2]
		require.NotNil(t, stored.ParentID)
		assert.Equal(t, uint(1), *stored.ParentID)
		assert.Equal(t, hierarchy.CategoryCongregacao, stored.Category)
		assert.True(t, stored.Permissions.Granted(model.CapViewMembers))
	})

	t.Run("ineligible category yields 422", func(t *testing.T) {
		repo := newStubChurchRepo(
			&model.Church{ID: 1, Name: "Centro Oeste", Code: "sp-a1b2", Category: hierarchy.CategoryCentro},
			&model.Church{ID: 2, Name: "Igreja Nova", Code: "sp-c3d4", Category: hierarchy.CategoryCongregacao},
		)
		h := newTestHandler(repo)

		// Sede outranks a Centro parent
		body := `{"parent_id":1,"category":"Sede","permissions":{}}`
		rec := doRequest(t, h.ConfirmLink, http.MethodPost, "/network/link", body, 2, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Nil(t, repo.churches[2].ParentID)
	})

	t.Run("unknown category yields 400", func(t *testing.T) {
		repo := newStubChurchRepo(
			&model.Church{ID: 1, Code: "sp-a1b2", Category: hierarchy.CategorySede},
			&model.Church{ID: 2, Code: "sp-c3d4", Category: hierarchy.CategoryCongregacao},
		)
		h := newTestHandler(repo)

		body := `{"parent_id":1,"category":"Diocese","permissions":{}}`
		rec := doRequest(t, h.ConfirmLink, http.MethodPost, "/network/link", body, 2, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing parent yields 404", func(t *testing.T) {
		repo := newStubChurchRepo(
			&model.Church{ID: 2, Code: "sp-c3d4", Category: hierarchy.CategoryCongregacao},
		)
		h := newTestHandler(repo)

		body := `{"parent_id":9,"category":"Congregação","permissions":{}}`
		rec := doRequest(t, h.ConfirmLink, http.MethodPost, "/network/link", body, 2, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUnlink(t *testing.T) {
	parentID := uint(1)
	repo := newStubChurchRepo(
		&model.Church{ID: 1, Code: "sp-a1b2", Category: hierarchy.CategorySede},
		&model.Church{ID: 2, Code: "sp-c3d4", Category: hierarchy.CategoryCongregacao, ParentID: &parentID,
			Permissions: model.PermissionFlags{model.CapViewMembers: true}},
	)
	h := newTestHandler(repo)

	rec := doRequest(t, h.Unlink, http.MethodDelete, "/network/link", "", 2, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	stored := repo.churches[2]
	assert.Nil(t, stored.ParentID)
	// flags survive the unlink so a re-link does not start from scratch
	assert.True(t, stored.Permissions.Granted(model.CapViewMembers))
}

func TestUpdatePermissions(t *testing.T) {
	parentID := uint(1)
	repo := newStubChurchRepo(
		&model.Church{ID: 1, Code: "sp-a1b2", Category: hierarchy.CategorySede},
		&model.Church{ID: 2, Code: "sp-c3d4", Category: hierarchy.CategoryCongregacao, ParentID: &parentID},
	)
	h := newTestHandler(repo)

	body := `{"permissions":{"view_members":true,"view_payroll":true}}`
	rec := doRequest(t, h.UpdatePermissions, http.MethodPut, "/network/permissions", body, 2, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	stored := repo.churches[2]
	assert.True(t, stored.Permissions.Granted(model.CapViewMembers))
	// unknown capabilities are dropped at the boundary
	_, present := stored.Permissions["view_payroll"]
	assert.False(t, present)
}

func TestListChildren(t *testing.T) {
	parentID := uint(1)
	repo := newStubChurchRepo(
		&model.Church{ID: 1, Code: "sp-a1b2", Category: hierarchy.CategorySede},
		&model.Church{ID: 2, Code: "sp-c3d4", Category: hierarchy.CategoryCongregacao, ParentID: &parentID},
		&model.Church{ID: 3, Code: "sp-e5f6", Category: hierarchy.CategoryCentro, ParentID: &parentID},
		&model.Church{ID: 4, Code: "sp-g7h8", Category: hierarchy.CategoryCongregacao},
	)
	h := newTestHandler(repo)

	rec := doRequest(t, h.ListChildren, http.MethodGet, "/network/children", "", 1, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
}

func TestChildAggregates(t *testing.T) {
	parentID := uint(1)
	repo := newStubChurchRepo(
		&model.Church{ID: 1, Code: "sp-a1b2", Category: hierarchy.CategorySede},
		&model.Church{ID: 2, Code: "sp-c3d4", Category: hierarchy.CategoryCongregacao, ParentID: &parentID,
			Permissions: model.PermissionFlags{model.CapViewMembers: true}},
		&model.Church{ID: 3, Code: "sp-e5f6", Category: hierarchy.CategoryCongregacao},
	)
	h := newTestHandler(repo)

	t.Run("returns only granted aggregates", func(t *testing.T) {
		rec := doRequest(t, h.ChildAggregates, http.MethodGet, "/network/children/2/aggregates", "", 1,
			map[string]string{"id": "2"})

		require.Equal(t, http.StatusOK, rec.Code)
		var bundle service.AggregateBundle
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bundle))
		require.NotNil(t, bundle.Members)
		assert.Equal(t, int64(42), bundle.Members.Count)
		assert.Nil(t, bundle.Departments)
		assert.Nil(t, bundle.ServiceStats)
		assert.Nil(t, bundle.Events)
	})

	t.Run("church not linked to the caller yields 404", func(t *testing.T) {
		rec := doRequest(t, h.ChildAggregates, http.MethodGet, "/network/children/3/aggregates", "", 1,
			map[string]string{"id": "3"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown church yields 404", func(t *testing.T) {
		rec := doRequest(t, h.ChildAggregates, http.MethodGet, "/network/children/99/aggregates", "", 1,
			map[string]string{"id": "99"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
