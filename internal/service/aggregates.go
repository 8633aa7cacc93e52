package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/PauloHelder/thronus01-sub002/internal/model"
	"github.com/PauloHelder/thronus01-sub002/internal/repository"
	"github.com/PauloHelder/thronus01-sub002/pkg/logger"
	"github.com/PauloHelder/thronus01-sub002/prometheus"
)

// defaultStatsLimit bounds the service-statistics history returned to a parent
const defaultStatsLimit = 12

// MembersAggregate is the member count shared with an authorized parent
type MembersAggregate struct {
	Count       int64 `json:"count"`
	Unavailable bool  `json:"unavailable,omitempty"`
}

// ServiceStatsAggregate is the service attendance history shared with an
// authorized parent
type ServiceStatsAggregate struct {
	History           []repository.ServiceStatsRow `json:"history"`
	AverageAttendance float64                      `json:"average_attendance"`
	Unavailable       bool                         `json:"unavailable,omitempty"`
}

// DepartmentsAggregate is the department count shared with an authorized parent
type DepartmentsAggregate struct {
	Count       int64 `json:"count"`
	Unavailable bool  `json:"unavailable,omitempty"`
}

// EventsAggregate is the upcoming-event count shared with an authorized parent
type EventsAggregate struct {
	Upcoming    int64 `json:"upcoming"`
	Unavailable bool  `json:"unavailable,omitempty"`
}

// AggregateBundle carries the aggregates a viewer was allowed to read.
// A nil field means the capability was not granted; a populated field with
// Unavailable set means the capability was granted but the query failed.
// The distinction lets callers tell "no access" from "granted, count is zero".
type AggregateBundle struct {
	ChurchID     uint                   `json:"church_id"`
	Members      *MembersAggregate      `json:"members,omitempty"`
	ServiceStats *ServiceStatsAggregate `json:"service_stats,omitempty"`
	Departments  *DepartmentsAggregate  `json:"departments,omitempty"`
	Events       *EventsAggregate       `json:"events,omitempty"`
}

// AggregateService is the permission-scoped read gate: it decides which
// aggregate reads a parent may execute against a child church and runs
// only the permitted ones.
type AggregateService struct {
	aggregates repository.AggregateRepository
	statsLimit int
	log        *zap.Logger
}

// NewAggregateService creates an AggregateService
func NewAggregateService(aggregates repository.AggregateRepository, log *zap.Logger) *AggregateService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AggregateService{
		aggregates: aggregates,
		statsLimit: defaultStatsLimit,
		log:        log,
	}
}

// IsAuthorized reports whether the viewer may read the given capability of
// the target church. Fail-closed: true only when the target is linked to
// the viewer AND the flag is granted. Absence of authorization is a normal
// outcome, never an error.
func (s *AggregateService) IsAuthorized(viewerChurchID uint, target *model.Church, capability model.Capability) bool {
	allowed := target != nil &&
		target.ParentID != nil &&
		*target.ParentID == viewerChurchID &&
		target.Permissions.Granted(capability)

	prometheus.RecordGateDecision(string(capability), allowed)
	return allowed
}

// FetchAuthorizedAggregates executes the aggregate reads the viewer is
// authorized for against the target church. The reads are independent and
// run concurrently; one failing aggregate never aborts the others, it is
// reported as unavailable instead.
func (s *AggregateService) FetchAuthorizedAggregates(ctx context.Context, viewerChurchID uint, target *model.Church) *AggregateBundle {
	bundle := &AggregateBundle{ChurchID: target.ID}

	var wg sync.WaitGroup

	if s.IsAuthorized(viewerChurchID, target, model.CapViewMembers) {
		bundle.Members = &MembersAggregate{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, err := s.aggregates.MemberCount(ctx, target.ID)
			if err != nil {
				s.reportFailure(model.CapViewMembers, target.ID, err)
				bundle.Members.Unavailable = true
				return
			}
			bundle.Members.Count = count
		}()
	}

	if s.IsAuthorized(viewerChurchID, target, model.CapViewServiceStats) {
		bundle.ServiceStats = &ServiceStatsAggregate{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			history, err := s.aggregates.ServiceStats(ctx, target.ID, s.statsLimit)
			if err != nil {
				s.reportFailure(model.CapViewServiceStats, target.ID, err)
				bundle.ServiceStats.Unavailable = true
				return
			}
			bundle.ServiceStats.History = history
			bundle.ServiceStats.AverageAttendance = averageAttendance(history)
		}()
	}

	if s.IsAuthorized(viewerChurchID, target, model.CapViewDepartments) {
		bundle.Departments = &DepartmentsAggregate{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, err := s.aggregates.DepartmentCount(ctx, target.ID)
			if err != nil {
				s.reportFailure(model.CapViewDepartments, target.ID, err)
				bundle.Departments.Unavailable = true
				return
			}
			bundle.Departments.Count = count
		}()
	}

	if s.IsAuthorized(viewerChurchID, target, model.CapViewEvents) {
		bundle.Events = &EventsAggregate{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, err := s.aggregates.UpcomingEventCount(ctx, target.ID)
			if err != nil {
				s.reportFailure(model.CapViewEvents, target.ID, err)
				bundle.Events.Unavailable = true
				return
			}
			bundle.Events.Upcoming = count
		}()
	}

	wg.Wait()
	return bundle
}

func (s *AggregateService) reportFailure(capability model.Capability, churchID uint, err error) {
	prometheus.AggregateFailureCounter.WithLabelValues(string(capability)).Inc()
	s.log.Error("aggregate query failed",
		zap.String("capability", string(capability)),
		logger.ChurchField(churchID),
		zap.Error(err))
}

func averageAttendance(history []repository.ServiceStatsRow) float64 {
	if len(history) == 0 {
		return 0
	}
	total := 0
	for _, row := range history {
		total += row.Attendance
	}
	return float64(total) / float64(len(history))
}
