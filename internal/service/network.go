package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PauloHelder/thronus01-sub002/internal/hierarchy"
	"github.com/PauloHelder/thronus01-sub002/internal/model"
	"github.com/PauloHelder/thronus01-sub002/internal/repository"
	"github.com/PauloHelder/thronus01-sub002/pkg/logger"
	"github.com/PauloHelder/thronus01-sub002/prometheus"
)

// NetworkService validates and persists parent/child relationships between
// churches. Writes are single-shot: validation failures are detected before
// any write, and transient store failures are left for the caller to retry.
type NetworkService struct {
	churches             repository.ChurchRepository
	keepCategoryOnUnlink bool
	log                  *zap.Logger
}

// NewNetworkService creates a NetworkService
func NewNetworkService(churches repository.ChurchRepository, keepCategoryOnUnlink bool, log *zap.Logger) *NetworkService {
	if log == nil {
		log = zap.NewNop()
	}
	return &NetworkService{
		churches:             churches,
		keepCategoryOnUnlink: keepCategoryOnUnlink,
		log:                  log,
	}
}

// FindCandidate looks up a parent candidate by its public short code.
// The code is trimmed of surrounding whitespace before the lookup.
func (s *NetworkService) FindCandidate(ctx context.Context, selfChurchID uint, code string) (*model.Church, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCandidateNotFound
	}

	candidate, err := s.churches.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCandidateNotFound
		}
		return nil, classifyStoreError(err)
	}

	if candidate.ID == selfChurchID {
		return nil, ErrSelfLink
	}

	return candidate, nil
}

// EligibleCategories computes the categories a child may take beneath the
// candidate parent. Candidates without a stored category are treated as
// top rank. An empty result means nothing can link beneath the candidate.
func (s *NetworkService) EligibleCategories(candidate *model.Church) ([]hierarchy.Category, error) {
	eligible := hierarchy.AllowedChildCategories(candidate.CategoryOrTop())
	if len(eligible) == 0 {
		return nil, ErrNoEligibleCategory
	}
	return eligible, nil
}

// ConfirmLink validates and persists the link from child to parent along
// with the chosen category and permission flags. Re-linking an already
// linked church is permitted; the re-parenting is logged for audit.
func (s *NetworkService) ConfirmLink(ctx context.Context, childID, parentID uint, category hierarchy.Category, flags model.PermissionFlags) (*model.Church, error) {
	if childID == parentID {
		prometheus.RecordLinkOperation("confirm", "error")
		return nil, ErrSelfLink
	}

	parent, err := s.churches.GetByID(ctx, parentID)
	if err != nil {
		prometheus.RecordLinkOperation("confirm", "error")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCandidateNotFound
		}
		return nil, classifyStoreError(err)
	}

	eligible, err := s.EligibleCategories(parent)
	if err != nil {
		prometheus.RecordLinkOperation("confirm", "error")
		return nil, err
	}
	if !containsCategory(eligible, category) {
		prometheus.RecordLinkOperation("confirm", "error")
		return nil, ErrIneligibleCategory
	}

	child, err := s.churches.GetByID(ctx, childID)
	if err != nil {
		prometheus.RecordLinkOperation("confirm", "error")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChurchNotFound
		}
		return nil, classifyStoreError(err)
	}

	if child.Linked() && *child.ParentID != parentID {
		// Silent overwrite is not acceptable: re-parenting is allowed but
		// must leave an audit trail.
		prometheus.RelinkCounter.Inc()
		s.log.Warn("re-parenting linked church",
			logger.ChurchField(childID),
			zap.Uint("previous_parent_id", *child.ParentID),
			zap.Uint("new_parent_id", parentID))
	}

	flags = sanitizeFlags(flags)

	if err := s.churches.SetParent(ctx, childID, parentID, category, flags); err != nil {
		prometheus.RecordLinkOperation("confirm", "error")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChurchNotFound
		}
		return nil, errors.Join(ErrLinkPersistence, classifyStoreError(err))
	}

	prometheus.RecordLinkOperation("confirm", "ok")
	s.log.Info("church linked",
		logger.ChurchField(childID),
		zap.Uint("parent_id", parentID),
		zap.String("category", string(category)))

	child.ParentID = &parentID
	child.Category = category
	child.Permissions = flags
	return child, nil
}

// Unlink clears the parent reference. Permission flags are kept so a
// re-link does not require re-entering them; the category is reset to the
// top rank only when the service is configured to do so. Unlinking an
// already unlinked church is a no-op.
func (s *NetworkService) Unlink(ctx context.Context, childID uint) (*model.Church, error) {
	child, err := s.churches.GetByID(ctx, childID)
	if err != nil {
		prometheus.RecordLinkOperation("unlink", "error")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChurchNotFound
		}
		return nil, classifyStoreError(err)
	}

	if !child.Linked() {
		return child, nil
	}

	resetCategory := !s.keepCategoryOnUnlink
	if err := s.churches.ClearParent(ctx, childID, resetCategory, hierarchy.Top()); err != nil {
		prometheus.RecordLinkOperation("unlink", "error")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChurchNotFound
		}
		return nil, errors.Join(ErrLinkPersistence, classifyStoreError(err))
	}

	prometheus.RecordLinkOperation("unlink", "ok")
	s.log.Info("church unlinked",
		logger.ChurchField(childID),
		zap.Bool("category_reset", resetCategory))

	child.ParentID = nil
	if resetCategory {
		child.Category = hierarchy.Top()
	}
	return child, nil
}

// UpdatePermissions replaces the permission flags a church shares with its
// parent. Unknown capabilities are dropped at this boundary.
func (s *NetworkService) UpdatePermissions(ctx context.Context, childID uint, flags model.PermissionFlags) (*model.Church, error) {
	child, err := s.churches.GetByID(ctx, childID)
	if err != nil {
		prometheus.RecordLinkOperation("permissions", "error")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChurchNotFound
		}
		return nil, classifyStoreError(err)
	}

	flags = sanitizeFlags(flags)

	if err := s.churches.SetPermissions(ctx, childID, flags); err != nil {
		prometheus.RecordLinkOperation("permissions", "error")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChurchNotFound
		}
		return nil, classifyStoreError(err)
	}

	prometheus.RecordLinkOperation("permissions", "ok")

	child.Permissions = flags
	return child, nil
}

// ListChildren returns the churches linked under the given parent
func (s *NetworkService) ListChildren(ctx context.Context, parentID uint) ([]model.Church, error) {
	children, err := s.churches.ListChildren(ctx, parentID)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	return children, nil
}

func containsCategory(list []hierarchy.Category, c hierarchy.Category) bool {
	for _, item := range list {
		if item == c {
			return true
		}
	}
	return false
}

// sanitizeFlags keeps only capabilities from the known enumeration
func sanitizeFlags(flags model.PermissionFlags) model.PermissionFlags {
	out := model.PermissionFlags{}
	for capability, granted := range flags {
		if model.IsKnownCapability(capability) {
			out[capability] = granted
		}
	}
	return out
}
