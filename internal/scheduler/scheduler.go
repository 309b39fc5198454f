package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vk/dispatchgrid/internal/model"
	"github.com/vk/dispatchgrid/internal/resolver"
)

// Sentinel outcomes for a single scheduling attempt. All three are normal,
// reportable conditions rather than faults; callers distinguish them with
// errors.Is and move on to the next candidate.
var (
	// ErrNoQualifiedAgent means the hard filters admitted nobody: the work
	// cannot be placed with the current agent roster.
	ErrNoQualifiedAgent = errors.New("scheduler: no qualified agent")

	// ErrNoAvailableAgent means qualified agents exist but all are at
	// capacity or unhealthy. Recoverable on a later cycle.
	ErrNoAvailableAgent = errors.New("scheduler: all qualified agents overloaded or unhealthy")

	// ErrDependencyNotSatisfied means a step was offered for scheduling
	// before its dependencies completed. Expected and frequent.
	ErrDependencyNotSatisfied = errors.New("scheduler: step dependencies not satisfied")
)

// defaultMaxAlternatives bounds the alternatives recorded on a decision.
// Candidates past the top few are rarely actionable.
const defaultMaxAlternatives = 4

// Matcher is the capability-matching surface the scheduler consumes.
type Matcher interface {
	FindCapableAgents(requiredCapabilities, requiredSkills []string, targetLevel model.Level) []string
	Score(roleID string, requiredCapabilities []string) float64
}

// Ranker is the availability-ranking surface the scheduler consumes.
// reserved carries cycle-local provisional assignments; nil outside a cycle.
type Ranker interface {
	RankByAvailability(roleIDs []string, reserved map[string]int) []string
}

// Resolver is the dependency-resolution surface the scheduler consumes.
type Resolver interface {
	StepReady(workflowID, stepID string) bool
	ReadySteps(workflowID string) ([]resolver.ReadyStep, error)
	ParallelGroups(workflowID string) ([][]string, error)
	Step(workflowID, stepID string) (*model.Step, error)
}

// Scheduler is the single facade producing scheduling decisions. It holds no
// mutable state of its own and never writes workflow or queue state, so it
// is safe to share across cycles and call concurrently.
type Scheduler struct {
	matcher         Matcher
	ranker          Ranker
	resolver        Resolver
	now             func() time.Time
	maxAlternatives int
}

// Option tweaks Scheduler construction.
type Option func(*Scheduler)

// WithClock injects a clock, used by tests to pin the aging bonus.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithMaxAlternatives overrides the number of runner-up agents recorded on
// each decision. Non-positive values keep the default.
func WithMaxAlternatives(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxAlternatives = n
		}
	}
}

// New wires a Scheduler from its three collaborators.
func New(matcher Matcher, ranker Ranker, res Resolver, opts ...Option) *Scheduler {
	s := &Scheduler{
		matcher:         matcher,
		ranker:          ranker,
		resolver:        res,
		now:             time.Now,
		maxAlternatives: defaultMaxAlternatives,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleWorkItem places one work item. On success the decision names the
// least-loaded qualified agent, with the runners-up as alternatives. The
// reserved map, when non-nil, adds cycle-local provisional load on top of
// reported queue depths.
func (s *Scheduler) ScheduleWorkItem(item *model.WorkItem, targetLevel model.Level, reserved map[string]int) (*model.SchedulingDecision, error) {
	capable := s.matcher.FindCapableAgents(item.RequiredCapabilities, item.RequiredSkills, targetLevel)
	if len(capable) == 0 {
		return nil, fmt.Errorf("work item %q (needs %s): %w",
			item.ID, describeRequirements(item, targetLevel), ErrNoQualifiedAgent)
	}

	ranked := s.ranker.RankByAvailability(capable, reserved)
	if len(ranked) == 0 {
		return nil, fmt.Errorf("work item %q (%d qualified): %w",
			item.ID, len(capable), ErrNoAvailableAgent)
	}

	assigned := ranked[0]
	alternatives := ranked[1:]
	if len(alternatives) > s.maxAlternatives {
		alternatives = alternatives[:s.maxAlternatives]
	}

	decidedAt := s.now()
	return &model.SchedulingDecision{
		ID:         uuid.NewString(),
		WorkItem:   item,
		WorkItemID: item.ID,
		AssignedTo: assigned,
		Reason: fmt.Sprintf("capability score %.2f, lowest load among %d qualified agent(s)",
			s.matcher.Score(assigned, item.RequiredCapabilities), len(capable)),
		Alternatives:  append([]string(nil), alternatives...),
		PriorityScore: PriorityScore(item, decidedAt),
		DecidedAt:     decidedAt,
	}, nil
}

// ScheduleStep places one workflow step. Readiness is re-checked here even
// though cycle callers already filtered through ReadySteps, because the
// facade must be safe to call directly.
func (s *Scheduler) ScheduleStep(workflowID, stepID string, reserved map[string]int) (*model.SchedulingDecision, error) {
	if !s.resolver.StepReady(workflowID, stepID) {
		return nil, fmt.Errorf("step %q in workflow %q: %w", stepID, workflowID, ErrDependencyNotSatisfied)
	}
	step, err := s.resolver.Step(workflowID, stepID)
	if err != nil {
		return nil, err
	}
	return s.ScheduleWorkItem(StepWorkItem(workflowID, step), step.TargetLevel, reserved)
}

// SchedulableSteps is a pass-through to the resolver's ready-step listing,
// exposed here so callers have a single facade.
func (s *Scheduler) SchedulableSteps(workflowID string) ([]resolver.ReadyStep, error) {
	return s.resolver.ReadySteps(workflowID)
}

// StepWorkItem converts a ready step into the work item the placement
// pipeline operates on. Requirements and payload carry over unchanged.
func StepWorkItem(workflowID string, step *model.Step) *model.WorkItem {
	return &model.WorkItem{
		ID:                   workflowID + "/" + step.ID,
		WorkflowID:           workflowID,
		StepID:               step.ID,
		Priority:             step.Priority,
		RequiredCapabilities: step.RequiredCapabilities,
		RequiredSkills:       step.RequiredSkills,
		CreatedAt:            step.CreatedAt,
		Payload:              step.Arguments,
	}
}

func describeRequirements(item *model.WorkItem, targetLevel model.Level) string {
	var parts []string
	if len(item.RequiredCapabilities) > 0 {
		parts = append(parts, "capabilities "+strings.Join(item.RequiredCapabilities, ","))
	}
	if len(item.RequiredSkills) > 0 {
		parts = append(parts, "skills "+strings.Join(item.RequiredSkills, ","))
	}
	if targetLevel != "" {
		parts = append(parts, "level "+string(targetLevel))
	}
	if len(parts) == 0 {
		return "no requirements"
	}
	return strings.Join(parts, "; ")
}
