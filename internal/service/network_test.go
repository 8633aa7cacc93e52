package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/PauloHelder/thronus01-sub002/internal/hierarchy"
	"github.com/PauloHelder/thronus01-sub002/internal/model"
	"github.com/PauloHelder/thronus01-sub002/internal/repository"
	"github.com/PauloHelder/thronus01-sub002/pkg/config"
	"github.com/PauloHelder/thronus01-sub002/prometheus"
)

func TestMain(m *testing.M) {
	prometheus.InitMetrics(&config.Config{Metrics: config.MetricsConfig{Prefix: "church"}})
	os.Exit(m.Run())
}

// fakeChurchRepo is an in-memory ChurchRepository for service tests
type fakeChurchRepo struct {
	churches map[uint]*model.Church

	setParentErr      error
	clearParentErr    error
	setPermissionsErr error
}

func newFakeChurchRepo(churches ...*model.Church) *fakeChurchRepo {
	repo := &fakeChurchRepo{churches: make(map[uint]*model.Church)}
	for _, c := range churches {
		repo.churches[c.ID] = c
	}
	return repo
}

func (f *fakeChurchRepo) GetByID(_ context.Context, id uint) (*model.Church, error) {
	c, ok := f.churches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeChurchRepo) GetByCode(_ context.Context, code string) (*model.Church, error) {
	for _, c := range f.churches {
		if c.Code == code {
			copied := *c
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeChurchRepo) SetParent(_ context.Context, childID uint, parentID uint, category hierarchy.Category, flags model.PermissionFlags) error {
	if f.setParentErr != nil {
		return f.setParentErr
	}
	c, ok := f.churches[childID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.ParentID = &parentID
	c.Category = category
	c.Permissions = flags
	return nil
}

func (f *fakeChurchRepo) ClearParent(_ context.Context, childID uint, resetCategory bool, category hierarchy.Category) error {
	if f.clearParentErr != nil {
		return f.clearParentErr
	}
	c, ok := f.churches[childID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.ParentID = nil
	if resetCategory {
		c.Category = category
	}
	return nil
}

func (f *fakeChurchRepo) SetPermissions(_ context.Context, childID uint, flags model.PermissionFlags) error {
	if f.setPermissionsErr != nil {
		return f.setPermissionsErr
	}
	c, ok := f.churches[childID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Permissions = flags
	return nil
}

func (f *fakeChurchRepo) ListChildren(_ context.Context, parentID uint) ([]model.Church, error) {
	var out []model.Church
	for _, c := range f.churches {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, *c)
		}
	}
	return out, nil
}

var _ repository.ChurchRepository = (*fakeChurchRepo)(nil)

func sede(id uint, code string) *model.Church {
	return &model.Church{ID: id, Name: "Igreja Sede", Code: code, Category: hierarchy.CategorySede}
}

func TestFindCandidateTrimsCode(t *testing.T) {
	repo := newFakeChurchRepo(sede(1, "rj0123"))
	svc := NewNetworkService(repo, true, nil)

	candidate, err := svc.FindCandidate(context.Background(), 2, "  rj0123  ")
	require.NoError(t, err)
	assert.Equal(t, uint(1), candidate.ID)
}

func TestFindCandidateNotFound(t *testing.T) {
	repo := newFakeChurchRepo(sede(1, "rj0123"))
	svc := NewNetworkService(repo, true, nil)

	_, err := svc.FindCandidate(context.Background(), 2, "sp9999")
	assert.ErrorIs(t, err, ErrCandidateNotFound)

	_, err = svc.FindCandidate(context.Background(), 2, "   ")
	assert.ErrorIs(t, err, ErrCandidateNotFound)
}

func TestFindCandidateRejectsSelfLink(t *testing.T) {
	repo := newFakeChurchRepo(sede(1, "rj0123"))
	svc := NewNetworkService(repo, true, nil)

	_, err := svc.FindCandidate(context.Background(), 1, "rj0123")
	assert.ErrorIs(t, err, ErrSelfLink)
}

func TestEligibleCategoriesDefaultsToTopRank(t *testing.T) {
	svc := NewNetworkService(newFakeChurchRepo(), true, nil)

	// Candidate without a stored category is treated as top rank
	eligible, err := svc.EligibleCategories(&model.Church{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, hierarchy.AllowedChildCategories(hierarchy.Top()), eligible)
}

func TestEligibleCategoriesLowestRank(t *testing.T) {
	svc := NewNetworkService(newFakeChurchRepo(), true, nil)

	candidate := &model.Church{ID: 1, Code: "rj0123", Category: hierarchy.CategoryPontoOracao}
	_, err := svc.EligibleCategories(candidate)
	assert.ErrorIs(t, err, ErrNoEligibleCategory)
}

func TestConfirmLinkRejectsSelfLink(t *testing.T) {
	svc := NewNetworkService(newFakeChurchRepo(), true, nil)

	_, err := svc.ConfirmLink(context.Background(), 7, 7, hierarchy.CategoryCongregacao, nil)
	assert.ErrorIs(t, err, ErrSelfLink)
}

func TestConfirmLinkParentNotFound(t *testing.T) {
	repo := newFakeChurchRepo(&model.Church{ID: 2, Code: "child"})
	svc := NewNetworkService(repo, true, nil)

	_, err := svc.ConfirmLink(context.Background(), 2, 99, hierarchy.CategoryCongregacao, nil)
	assert.ErrorIs(t, err, ErrCandidateNotFound)
}

func TestConfirmLinkRejectsIneligibleCategory(t *testing.T) {
	parent := &model.Church{ID: 1, Code: "parent", Category: hierarchy.CategoryCongregacao}
	child := &model.Church{ID: 2, Code: "child"}
	svc := NewNetworkService(newFakeChurchRepo(parent, child), true, nil)

	// Congregação cannot have a Sede or a sibling Congregação beneath it
	_, err := svc.ConfirmLink(context.Background(), 2, 1, hierarchy.CategorySede, nil)
	assert.ErrorIs(t, err, ErrIneligibleCategory)

	_, err = svc.ConfirmLink(context.Background(), 2, 1, hierarchy.CategoryCongregacao, nil)
	assert.ErrorIs(t, err, ErrIneligibleCategory)
}

func TestConfirmLinkRejectsLowestRankParent(t *testing.T) {
	parent := &model.Church{ID: 1, Code: "parent", Category: hierarchy.CategoryPontoOracao}
	child := &model.Church{ID: 2, Code: "child"}
	svc := NewNetworkService(newFakeChurchRepo(parent, child), true, nil)

	_, err := svc.ConfirmLink(context.Background(), 2, 1, hierarchy.CategoryPontoOracao, nil)
	assert.ErrorIs(t, err, ErrNoEligibleCategory)
}

func TestConfirmLinkChildNotFound(t *testing.T) {
	parent := sede(1, "parent")
	svc := NewNetworkService(newFakeChurchRepo(parent), true, nil)

	_, err := svc.ConfirmLink(context.Background(), 99, 1, hierarchy.CategoryCongregacao, nil)
	assert.ErrorIs(t, err, ErrChurchNotFound)
}

func TestConfirmLinkPersistsAtomically(t *testing.T) {
	parent := sede(1, "parent")
	child := &model.Church{ID: 2, Code: "child"}
	repo := newFakeChurchRepo(parent, child)
	svc := NewNetworkService(repo, true, nil)

	flags := model.PermissionFlags{
		model.CapViewMembers:      true,
		model.CapViewServiceStats: false,
	}

	linked, err := svc.ConfirmLink(context.Background(), 2, 1, hierarchy.CategoryCongregacao, flags)
	require.NoError(t, err)

	require.NotNil(t, linked.ParentID)
	assert.Equal(t, uint(1), *linked.ParentID)
	assert.Equal(t, hierarchy.CategoryCongregacao, linked.Category)
	assert.True(t, linked.Permissions.Granted(model.CapViewMembers))
	assert.False(t, linked.Permissions.Granted(model.CapViewServiceStats))

	stored := repo.churches[2]
	require.NotNil(t, stored.ParentID)
	assert.Equal(t, uint(1), *stored.ParentID)
	assert.Equal(t, hierarchy.CategoryCongregacao, stored.Category)
}

func TestConfirmLinkDropsUnknownCapabilities(t *testing.T) {
	parent := sede(1, "parent")
	child := &model.Church{ID: 2, Code: "child"}
	repo := newFakeChurchRepo(parent, child)
	svc := NewNetworkService(repo, true, nil)

	flags := model.PermissionFlags{
		model.CapViewMembers: true,
		"view_everything":    true,
	}

	linked, err := svc.ConfirmLink(context.Background(), 2, 1, hierarchy.CategoryCongregacao, flags)
	require.NoError(t, err)

	assert.True(t, linked.Permissions.Granted(model.CapViewMembers))
	_, present := linked.Permissions["view_everything"]
	assert.False(t, present)
}

func TestConfirmLinkAllowsReparenting(t *testing.T) {
	oldParent := sede(1, "old")
	newParent := &model.Church{ID: 3, Name: "Ministério Central", Code: "new", Category: hierarchy.CategoryMinisterio}
	oldParentID := uint(1)
	child := &model.Church{ID: 2, Code: "child", ParentID: &oldParentID, Category: hierarchy.CategoryCongregacao}
	repo := newFakeChurchRepo(oldParent, newParent, child)
	svc := NewNetworkService(repo, true, nil)

	linked, err := svc.ConfirmLink(context.Background(), 2, 3, hierarchy.CategoryCongregacao, nil)
	require.NoError(t, err)

	require.NotNil(t, linked.ParentID)
	assert.Equal(t, uint(3), *linked.ParentID)
}

func TestConfirmLinkPersistenceFailure(t *testing.T) {
	parent := sede(1, "parent")
	child := &model.Church{ID: 2, Code: "child"}
	repo := newFakeChurchRepo(parent, child)
	repo.setParentErr = errors.New("connection reset")
	svc := NewNetworkService(repo, true, nil)

	_, err := svc.ConfirmLink(context.Background(), 2, 1, hierarchy.CategoryCongregacao, nil)
	assert.ErrorIs(t, err, ErrLinkPersistence)
	assert.ErrorIs(t, err, ErrStoreTransient)

	// No partial state: the child is still unlinked
	assert.Nil(t, repo.churches[2].ParentID)
}

func TestConfirmLinkDeadlineExpiryIsTransient(t *testing.T) {
	parent := sede(1, "parent")
	child := &model.Church{ID: 2, Code: "child"}
	repo := newFakeChurchRepo(parent, child)
	repo.setParentErr = fmt.Errorf("update churches: %w", context.DeadlineExceeded)
	svc := NewNetworkService(repo, true, nil)

	// A request whose context deadline expires mid-write must surface as
	// retryable, not as a hard failure.
	_, err := svc.ConfirmLink(context.Background(), 2, 1, hierarchy.CategoryCongregacao, nil)
	assert.ErrorIs(t, err, ErrLinkPersistence)
	assert.ErrorIs(t, err, ErrStoreTransient)
	assert.Nil(t, repo.churches[2].ParentID)
}

func TestConfirmLinkAuthorizationFailureNotRetryable(t *testing.T) {
	parent := sede(1, "parent")
	child := &model.Church{ID: 2, Code: "child"}
	repo := newFakeChurchRepo(parent, child)
	repo.setParentErr = &pgconn.PgError{Code: "42501", Message: "permission denied for table churches"}
	svc := NewNetworkService(repo, true, nil)

	_, err := svc.ConfirmLink(context.Background(), 2, 1, hierarchy.CategoryCongregacao, nil)
	assert.ErrorIs(t, err, ErrLinkPersistence)
	assert.ErrorIs(t, err, ErrStoreAuthorization)
	assert.NotErrorIs(t, err, ErrStoreTransient)
}

func TestUnlinkKeepsCategory(t *testing.T) {
	parentID := uint(1)
	child := &model.Church{ID: 2, Code: "child", ParentID: &parentID, Category: hierarchy.CategoryCongregacao,
		Permissions: model.PermissionFlags{model.CapViewMembers: true}}
	repo := newFakeChurchRepo(sede(1, "parent"), child)
	svc := NewNetworkService(repo, true, nil)

	unlinked, err := svc.Unlink(context.Background(), 2)
	require.NoError(t, err)

	assert.Nil(t, unlinked.ParentID)
	assert.Equal(t, hierarchy.CategoryCongregacao, unlinked.Category)
	// Permission flags stay dormant for a future re-link
	assert.True(t, repo.churches[2].Permissions.Granted(model.CapViewMembers))
}

func TestUnlinkResetsCategoryWhenConfigured(t *testing.T) {
	parentID := uint(1)
	child := &model.Church{ID: 2, Code: "child", ParentID: &parentID, Category: hierarchy.CategoryCongregacao}
	repo := newFakeChurchRepo(sede(1, "parent"), child)
	svc := NewNetworkService(repo, false, nil)

	unlinked, err := svc.Unlink(context.Background(), 2)
	require.NoError(t, err)

	assert.Nil(t, unlinked.ParentID)
	assert.Equal(t, hierarchy.Top(), unlinked.Category)
	assert.Equal(t, hierarchy.Top(), repo.churches[2].Category)
}

func TestUnlinkIsIdempotent(t *testing.T) {
	child := &model.Church{ID: 2, Code: "child", Category: hierarchy.CategoryCongregacao}
	repo := newFakeChurchRepo(child)
	svc := NewNetworkService(repo, true, nil)

	unlinked, err := svc.Unlink(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, unlinked.ParentID)
}

func TestUnlinkChurchNotFound(t *testing.T) {
	svc := NewNetworkService(newFakeChurchRepo(), true, nil)

	_, err := svc.Unlink(context.Background(), 99)
	assert.ErrorIs(t, err, ErrChurchNotFound)
}

func TestUpdatePermissions(t *testing.T) {
	parentID := uint(1)
	child := &model.Church{ID: 2, Code: "child", ParentID: &parentID,
		Permissions: model.PermissionFlags{model.CapViewMembers: true}}
	repo := newFakeChurchRepo(child)
	svc := NewNetworkService(repo, true, nil)

	updated, err := svc.UpdatePermissions(context.Background(), 2, model.PermissionFlags{
		model.CapViewServiceStats: true,
	})
	require.NoError(t, err)

	assert.True(t, updated.Permissions.Granted(model.CapViewServiceStats))
	assert.False(t, updated.Permissions.Granted(model.CapViewMembers))
}

func TestListChildren(t *testing.T) {
	parentID := uint(1)
	repo := newFakeChurchRepo(
		sede(1, "parent"),
		&model.Church{ID: 2, Code: "a", ParentID: &parentID},
		&model.Church{ID: 3, Code: "b", ParentID: &parentID},
		&model.Church{ID: 4, Code: "c"},
	)
	svc := NewNetworkService(repo, true, nil)

	children, err := svc.ListChildren(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, children, 2)
}
