// Package skill implements the conversational steps of the worktime
// assistant. Each step is a function over the incoming turn plus
// decoded auth and continuation state; multi-turn flows link steps by
// naming the next handler in the outgoing continuation block.
package skill

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/itplan/alice-worktime/internal/alice"
	"github.com/itplan/alice-worktime/internal/auth"
	"github.com/itplan/alice-worktime/internal/docflow"
	"github.com/itplan/alice-worktime/internal/llm"
	"github.com/itplan/alice-worktime/internal/prompts"
	"github.com/itplan/alice-worktime/internal/resolver"
	"github.com/itplan/alice-worktime/internal/router"
)

// Cache namespaces of the entity resolver.
const (
	nsTasks     = "tasks"
	nsWorkTypes = "worktypes"
)

// Continuation handler ids.
const (
	handlerTime        = "time"
	handlerTask        = "task"
	handlerWorkType    = "worktype"
	handlerDescription = "description"
	handlerConfirm     = "confirm"
	handlerProject     = "project"
)

const (
	taskPageSize    = 5
	dailyPageSize   = 1
	projectPageSize = 5

	workTypeCacheTTL = 10 * time.Minute
)

// Backend is the slice of the document-flow API the steps consume.
type Backend interface {
	Tasks(ctx context.Context, userID string) ([]docflow.Task, error)
	TaskByName(ctx context.Context, userID, name string) (docflow.Task, error)
	OverdueTasks(ctx context.Context, userID string) ([]docflow.Task, error)
	WorkTypes(ctx context.Context) ([]docflow.WorkType, error)
	ProjectByName(ctx context.Context, name string) (docflow.Project, error)
	WorkTimeByUser(ctx context.Context, userID string, day time.Time) ([]docflow.WorkTimeEntry, error)
	WorkTimeByProject(ctx context.Context, projectID string) ([]docflow.WorkTimeEntry, error)
	AddWorkTime(ctx context.Context, record docflow.Record) error
	WithSession(ctx context.Context, fn func(ctx context.Context) error) error
}

// Resolver resolves a spoken name against a candidate list.
type Resolver interface {
	Resolve(ctx context.Context, namespace string, candidates []resolver.Candidate, utterance string) (string, error)
}

// Turn is the per-request context handed to every step.
type Turn struct {
	In   *alice.IncomingTurn
	Auth auth.Context
}

// Location resolves the device timezone, falling back to UTC.
func (t *Turn) Location() *time.Location {
	if loc, err := time.LoadLocation(t.In.Meta.Timezone); err == nil {
		return loc
	}
	return time.UTC
}

type stepFunc func(ctx context.Context, turn *Turn) (*alice.OutgoingTurn, error)

type Service struct {
	backend Backend
	resolve Resolver
	model   llm.Completer
	prompts *prompts.Set
	logger  *slog.Logger
	now     func() time.Time

	table *router.Table
	steps map[router.Key]stepFunc

	workTypesMu sync.RWMutex
	workTypes   []docflow.WorkType
	workTypesAt time.Time
}

type Deps struct {
	Backend  Backend
	Resolver Resolver
	Model    llm.Completer
	Prompts  *prompts.Set
	Logger   *slog.Logger
	Now      func() time.Time
}

func New(deps Deps) (*Service, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Service{
		backend: deps.Backend,
		resolve: deps.Resolver,
		model:   deps.Model,
		prompts: deps.Prompts,
		logger:  deps.Logger.With("component", "skill"),
		now:     deps.Now,
		table:   router.NewTable(),
		steps:   make(map[router.Key]stepFunc),
	}
	if err := s.registerSteps(); err != nil {
		return nil, err
	}
	return s, nil
}

// registerSteps builds the static route table. Registration order of
// intents is their routing priority.
func (s *Service) registerSteps() error {
	type registration struct {
		key          router.Key
		requiresAuth bool
		step         stepFunc
	}
	all := []registration{
		{router.Root, false, s.stepRoot},
		{router.Unknown, false, s.stepUnknown},

		{router.Intent("getTasks"), true, s.stepTaskList},
		{router.Command(buttonTasks), true, s.stepTaskList},

		{router.Command(buttonWorktime), true, s.stepWorktimeStart},
		{router.Handler(handlerTime), true, s.stepTime},
		{router.Handler(handlerTask), true, s.stepTask},
		{router.Handler(handlerWorkType), true, s.stepWorkType},
		{router.Handler(handlerDescription), true, s.stepDescription},
		{router.Handler(handlerConfirm), true, s.stepConfirm},

		{router.Command(buttonReport), true, s.stepDailyReport},
		{router.Command(buttonProject), true, s.stepProjectAsk},
		{router.Handler(handlerProject), true, s.stepProject},

		{router.Command(buttonNext), false, s.stepNextPage},
		{router.Command("отмена"), false, s.stepCancel},
		{router.Command("спасибо"), false, s.stepThanks},
		{router.Command(buttonHelp), false, s.stepHelp},
	}
	for _, r := range all {
		if err := s.table.Register(r.key, r.requiresAuth); err != nil {
			return err
		}
		s.steps[r.key] = r.step
	}
	return nil
}

// Table exposes the routing table to the webhook layer.
func (s *Service) Table() *router.Table {
	return s.table
}

// Execute runs the step registered for the key.
func (s *Service) Execute(ctx context.Context, key router.Key, turn *Turn) (*alice.OutgoingTurn, error) {
	step, ok := s.steps[key]
	if !ok {
		return nil, fmt.Errorf("no step registered for route %s", key)
	}
	return step(ctx, turn)
}

// cachedWorkTypes serves the work-type vocabulary from a short-lived
// process cache; the list changes rarely and every webhook turn runs
// against a deadline. The refresher renews it out of band.
func (s *Service) cachedWorkTypes(ctx context.Context) ([]docflow.WorkType, error) {
	s.workTypesMu.RLock()
	cached, at := s.workTypes, s.workTypesAt
	s.workTypesMu.RUnlock()
	if len(cached) > 0 && s.now().Sub(at) < workTypeCacheTTL {
		return cached, nil
	}
	return s.RefreshWorkTypes(ctx)
}

// RefreshWorkTypes fetches the work-type list and replaces the cache.
func (s *Service) RefreshWorkTypes(ctx context.Context) ([]docflow.WorkType, error) {
	workTypes, err := s.backend.WorkTypes(ctx)
	if err != nil {
		return nil, err
	}
	s.workTypesMu.Lock()
	s.workTypes = workTypes
	s.workTypesAt = s.now()
	s.workTypesMu.Unlock()
	return workTypes, nil
}

func taskCandidates(tasks []docflow.Task) []resolver.Candidate {
	candidates := make([]resolver.Candidate, 0, len(tasks))
	for _, task := range tasks {
		candidates = append(candidates, resolver.Candidate{ID: task.ID, Name: task.Name})
	}
	return candidates
}

func workTypeCandidates(workTypes []docflow.WorkType) []resolver.Candidate {
	candidates := make([]resolver.Candidate, 0, len(workTypes))
	for _, workType := range workTypes {
		candidates = append(candidates, resolver.Candidate{ID: workType.ID, Name: workType.Name})
	}
	return candidates
}
