package record

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rpggio/jobsite/internal/export"
	"github.com/rpggio/jobsite/internal/pipeline"
	"github.com/rpggio/jobsite/internal/scope"
)

// Module is the type-erased view of a Service used by the transports, which
// address modules by name and exchange records as JSON.
type Module interface {
	Name() string
	Describe() Descriptor
	Query(ctx context.Context, sc scope.Scope, f pipeline.FilterState) (*QueryResult, error)
	Stats(ctx context.Context, sc scope.Scope, f pipeline.FilterState) (pipeline.Stats, error)
	Create(ctx context.Context, sc scope.Scope, payload json.RawMessage) (any, error)
	Update(ctx context.Context, sc scope.Scope, id string, payload json.RawMessage) (any, error)
	Approve(ctx context.Context, sc scope.Scope, id string) (any, error)
	Sync(ctx context.Context, sc scope.Scope) (SyncResult, error)
	Export(ctx context.Context, sc scope.Scope, f pipeline.FilterState, opts export.Options, sink export.Sink) (export.Result, error)
}

// QueryResult is Result with the record slice erased.
type QueryResult struct {
	Module  string         `json:"module"`
	Scope   scope.Scope    `json:"scope"`
	Count   int            `json:"count"`
	Records any            `json:"records"`
	Stats   pipeline.Stats `json:"stats"`
}

// AsModule exposes s through the Module interface.
func (s *Service[T]) AsModule() Module {
	return module[T]{s}
}

type module[T any] struct {
	svc *Service[T]
}

func (m module[T]) Name() string         { return m.svc.Name() }
func (m module[T]) Describe() Descriptor { return m.svc.Describe() }

func (m module[T]) Query(ctx context.Context, sc scope.Scope, f pipeline.FilterState) (*QueryResult, error) {
	res, err := m.svc.Query(ctx, sc, f)
	if err != nil {
		return nil, err
	}
	return &QueryResult{
		Module:  res.Module,
		Scope:   res.Scope,
		Count:   len(res.Records),
		Records: res.Records,
		Stats:   res.Stats,
	}, nil
}

func (m module[T]) Stats(ctx context.Context, sc scope.Scope, f pipeline.FilterState) (pipeline.Stats, error) {
	return m.svc.Stats(ctx, sc, f)
}

func (m module[T]) Create(ctx context.Context, sc scope.Scope, payload json.RawMessage) (any, error) {
	rec, err := decode[T](payload)
	if err != nil {
		return nil, err
	}
	return m.svc.Create(ctx, sc, rec)
}

func (m module[T]) Update(ctx context.Context, sc scope.Scope, id string, payload json.RawMessage) (any, error) {
	rec, err := decode[T](payload)
	if err != nil {
		return nil, err
	}
	return m.svc.Update(ctx, sc, id, rec)
}

func (m module[T]) Approve(ctx context.Context, sc scope.Scope, id string) (any, error) {
	return m.svc.Approve(ctx, sc, id)
}

func (m module[T]) Sync(ctx context.Context, sc scope.Scope) (SyncResult, error) {
	return m.svc.Sync(ctx, sc)
}

func (m module[T]) Export(ctx context.Context, sc scope.Scope, f pipeline.FilterState, opts export.Options, sink export.Sink) (export.Result, error) {
	return m.svc.Export(ctx, sc, f, opts, sink)
}

func decode[T any](payload json.RawMessage) (T, error) {
	var rec T
	if len(payload) == 0 {
		return rec, fmt.Errorf("%w: empty payload", ErrInvalidInput)
	}
	if err := json.Unmarshal(payload, &rec); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return rec, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Registry holds the modules served by the transports.
type Registry struct {
	modules map[string]Module
	order   []string
}

// NewRegistry registers modules in the given order.
func NewRegistry(modules ...Module) *Registry {
	r := &Registry{modules: make(map[string]Module, len(modules))}
	for _, m := range modules {
		if _, dup := r.modules[m.Name()]; !dup {
			r.order = append(r.order, m.Name())
		}
		r.modules[m.Name()] = m
	}
	return r
}

// Get returns the module registered under name.
func (r *Registry) Get(name string) (Module, error) {
	m, ok := r.modules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModule, name)
	}
	return m, nil
}

// List returns the modules in registration order.
func (r *Registry) List() []Module {
	out := make([]Module, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.modules[name])
	}
	return out
}

// Describe lists every module's descriptor.
func (r *Registry) Describe() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, m := range r.List() {
		out = append(out, m.Describe())
	}
	return out
}
