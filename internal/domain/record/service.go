package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/jobsite/internal/domain/activity"
	"github.com/rpggio/jobsite/internal/export"
	"github.com/rpggio/jobsite/internal/metrics"
	"github.com/rpggio/jobsite/internal/pipeline"
	"github.com/rpggio/jobsite/internal/repository"
	"github.com/rpggio/jobsite/internal/scope"
)

// Service handles one module's records: scoped queries, writes, approval,
// sync and export.
type Service[T any] struct {
	cfg        Config[T]
	records    Repository[T]
	activities ActivityRepository
	exporter   *export.Coordinator
	logger     *slog.Logger
	syncDelay  time.Duration
	now        func() time.Time
}

// Option configures a Service.
type Option func(*options)

type options struct {
	syncDelay time.Duration
	now       func() time.Time
}

// WithSyncDelay simulates the round trip of a module sync.
func WithSyncDelay(d time.Duration) Option {
	return func(o *options) { o.syncDelay = d }
}

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewService creates a new record service.
func NewService[T any](
	cfg Config[T],
	records Repository[T],
	activities ActivityRepository,
	exporter *export.Coordinator,
	logger *slog.Logger,
	opts ...Option,
) *Service[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if exporter == nil {
		exporter = export.NewCoordinator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service[T]{
		cfg:        cfg,
		records:    records,
		activities: activities,
		exporter:   exporter,
		logger:     logger,
		syncDelay:  o.syncDelay,
		now:        o.now,
	}
}

// Name returns the module name.
func (s *Service[T]) Name() string { return s.cfg.Name }

// Describe lists the module's filter keys, flags and rates.
func (s *Service[T]) Describe() Descriptor {
	spec := s.cfg.Spec
	return Descriptor{
		Name:     s.cfg.Name,
		Title:    s.cfg.Title,
		Statuses: s.cfg.Statuses,
		Fields:   sortedKeys(spec.Fields),
		Amounts:  sortedKeys(spec.Amounts),
		Flags:    sortedKeys(spec.Flags),
		Rates:    sortedKeys(spec.Rates),
	}
}

// Query loads the module's records and narrows them through the filter pipeline.
// Stats describe the filtered list.
func (s *Service[T]) Query(ctx context.Context, sc scope.Scope, f pipeline.FilterState) (*Result[T], error) {
	all, err := s.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing %s records: %w", s.cfg.Name, err)
	}
	filtered := pipeline.Filter(all, sc, f, s.cfg.Spec)
	metrics.ObserveQuery(s.cfg.Name, string(sc.Kind), len(filtered))

	return &Result[T]{
		Module:  s.cfg.Name,
		Scope:   sc,
		Records: filtered,
		Stats:   pipeline.Aggregate(filtered, s.cfg.Spec),
	}, nil
}

// Stats summarises the filtered records.
func (s *Service[T]) Stats(ctx context.Context, sc scope.Scope, f pipeline.FilterState) (pipeline.Stats, error) {
	res, err := s.Query(ctx, sc, f)
	if err != nil {
		return pipeline.Stats{}, err
	}
	return res.Stats, nil
}

// Create validates and stores a new record in a project visible to the scope.
func (s *Service[T]) Create(ctx context.Context, sc scope.Scope, rec T) (T, error) {
	var zero T
	if err := s.authorize(sc, scope.ActionCreate); err != nil {
		return zero, err
	}
	if !sc.Allows(s.cfg.Spec.Project(rec)) {
		return zero, ErrOutOfScope
	}

	s.cfg.Init(&rec, uuid.NewString(), s.now())
	if err := s.authorizeStatus(sc, nil, rec); err != nil {
		return zero, err
	}
	if err := Validate(rec); err != nil {
		return zero, err
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return zero, fmt.Errorf("creating record: %w", err)
	}

	s.log(ctx, rec, activity.TypeRecordCreated, "created %s record %s")
	return rec, nil
}

// Update replaces an existing record. Both the stored and the new project must
// be visible to the scope.
func (s *Service[T]) Update(ctx context.Context, sc scope.Scope, id string, rec T) (T, error) {
	var zero T
	if err := s.authorize(sc, scope.ActionEdit); err != nil {
		return zero, err
	}
	current, err := s.get(ctx, sc, id)
	if err != nil {
		return zero, err
	}
	if !sc.Allows(s.cfg.Spec.Project(rec)) {
		return zero, ErrOutOfScope
	}

	s.cfg.SetID(&rec, id)
	if s.cfg.Preserve != nil {
		s.cfg.Preserve(current, &rec)
	}
	if err := s.authorizeStatus(sc, &current, rec); err != nil {
		return zero, err
	}
	if err := Validate(rec); err != nil {
		return zero, err
	}
	if err := s.records.Update(ctx, rec); err != nil {
		return zero, fmt.Errorf("updating record: %w", err)
	}

	s.log(ctx, rec, activity.TypeRecordUpdated, "updated %s record %s")
	return rec, nil
}

// Approve applies the module's approval transition to a record.
func (s *Service[T]) Approve(ctx context.Context, sc scope.Scope, id string) (T, error) {
	var zero T
	if err := s.authorize(sc, scope.ActionApprove); err != nil {
		return zero, err
	}
	rec, err := s.get(ctx, sc, id)
	if err != nil {
		return zero, err
	}
	if s.cfg.Approve == nil {
		return zero, ErrInvalidTransition
	}
	if err := s.cfg.Approve(&rec, s.now()); err != nil {
		return zero, err
	}
	if err := s.records.Update(ctx, rec); err != nil {
		return zero, fmt.Errorf("updating record: %w", err)
	}

	s.log(ctx, rec, activity.TypeRecordApproved, "approved %s record %s")
	return rec, nil
}

// Sync refreshes the module from its upstream system. The upstream is
// simulated by the configured delay; cancellation of ctx aborts the wait.
func (s *Service[T]) Sync(ctx context.Context, sc scope.Scope) (SyncResult, error) {
	if err := s.authorize(sc, scope.ActionSync); err != nil {
		return SyncResult{}, err
	}
	if err := wait(ctx, s.syncDelay); err != nil {
		return SyncResult{}, err
	}

	all, err := s.records.List(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("listing %s records: %w", s.cfg.Name, err)
	}
	visible := pipeline.Filter(all, sc, pipeline.FilterState{}, s.cfg.Spec)
	result := SyncResult{Module: s.cfg.Name, Records: len(visible), SyncedAt: s.now()}

	s.logEntry(ctx, &activity.ActivityEntry{
		Module:       s.cfg.Name,
		ActivityType: activity.TypeModuleSynced,
		Summary:      fmt.Sprintf("synced %d %s records", result.Records, s.cfg.Name),
	})
	return result, nil
}

// Export filters the module's records and hands them to the export coordinator.
func (s *Service[T]) Export(ctx context.Context, sc scope.Scope, f pipeline.FilterState, opts export.Options, sink export.Sink) (export.Result, error) {
	if err := s.authorize(sc, scope.ActionExport); err != nil {
		return export.Result{}, err
	}
	res, err := s.Query(ctx, sc, f)
	if err != nil {
		return export.Result{}, err
	}

	table := export.NewTable(s.cfg.Title, res.Records, s.cfg.Columns)
	opts.Fallback = s.cfg.Name + "-export"
	out, err := s.exporter.Export(ctx, sink, table, opts)
	if err != nil {
		s.logEntry(ctx, &activity.ActivityEntry{
			Module:       s.cfg.Name,
			ActivityType: activity.TypeExportFailed,
			Summary:      fmt.Sprintf("%s export of %s failed", opts.Format, s.cfg.Name),
			Details:      err.Error(),
		})
		return export.Result{}, err
	}

	s.logEntry(ctx, &activity.ActivityEntry{
		Module:       s.cfg.Name,
		ActivityType: activity.TypeExportCompleted,
		Summary:      fmt.Sprintf("exported %d %s records to %s", out.Rows, s.cfg.Name, out.FileName),
	})
	return out, nil
}

func (s *Service[T]) get(ctx context.Context, sc scope.Scope, id string) (T, error) {
	var zero T
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return zero, ErrRecordNotFound
		}
		return zero, fmt.Errorf("loading record: %w", err)
	}
	if !sc.Allows(s.cfg.Spec.Project(rec)) {
		return zero, ErrOutOfScope
	}
	return rec, nil
}

func (s *Service[T]) authorize(sc scope.Scope, action scope.Action) error {
	if sc.Can(action) {
		return nil
	}
	metrics.ObserveDenial(s.cfg.Name, string(action))
	return fmt.Errorf("%w: %s cannot %s %s records", ErrForbidden, sc.Role, action, s.cfg.Name)
}

// authorizeStatus keeps approval behind the approve capability: a record may
// only enter an approved state through a scope that can approve.
func (s *Service[T]) authorizeStatus(sc scope.Scope, current *T, next T) error {
	if s.cfg.Approved == nil || !s.cfg.Approved(next) {
		return nil
	}
	if current != nil && s.cfg.Approved(*current) {
		return nil
	}
	return s.authorize(sc, scope.ActionApprove)
}

func (s *Service[T]) log(ctx context.Context, rec T, typ activity.ActivityType, format string) {
	id := s.cfg.Spec.ID(rec)
	s.logEntry(ctx, &activity.ActivityEntry{
		ProjectID:    s.cfg.Spec.Project(rec),
		Module:       s.cfg.Name,
		RecordID:     &id,
		ActivityType: typ,
		Summary:      fmt.Sprintf(format, s.cfg.Name, id),
	})
}

func (s *Service[T]) logEntry(ctx context.Context, entry *activity.ActivityEntry) {
	if s.activities == nil {
		return
	}
	entry.Actor = activity.ActorFromContext(ctx)
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	if err := s.activities.Log(ctx, entry); err != nil {
		s.logger.Warn("failed to log activity", "module", s.cfg.Name, "type", entry.ActivityType, "error", err)
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
