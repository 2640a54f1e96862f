package http

import (
	"context"
	"reflect"
	"sort"
)

type procKind int

const (
	queryKind procKind = iota
	mutationKind
)

// handlerFunc runs one procedure for the calling user on its raw JSON input.
type handlerFunc func(ctx context.Context, userID int64, raw []byte) (any, error)

type procedure struct {
	kind   procKind
	handle handlerFunc
}

// Router maps "<router>.<procedure>" names to handlers. Queries answer GET,
// mutations answer POST.
type Router struct {
	procs map[string]procedure
}

func NewRouter() *Router {
	return &Router{procs: make(map[string]procedure)}
}

func (r *Router) Query(name string, h handlerFunc) {
	r.procs[name] = procedure{kind: queryKind, handle: h}
}

func (r *Router) Mutation(name string, h handlerFunc) {
	r.procs[name] = procedure{kind: mutationKind, handle: h}
}

func (r *Router) lookup(name string) (procedure, bool) {
	p, ok := r.procs[name]
	return p, ok
}

// Names lists the registered procedures in order.
func (r *Router) Names() []string {
	names := make([]string, 0, len(r.procs))
	for n := range r.procs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// withInput adapts a service method taking a decoded input.
func withInput[In, Out any](fn func(context.Context, int64, In) (Out, error)) handlerFunc {
	return func(ctx context.Context, userID int64, raw []byte) (any, error) {
		in, err := DecodeInput[In](raw)
		if err != nil {
			return nil, err
		}
		out, err := fn(ctx, userID, in)
		if err != nil {
			return nil, err
		}
		return nonNil(out), nil
	}
}

// noInput adapts a service method that only needs the caller.
func noInput[Out any](fn func(context.Context, int64) (Out, error)) handlerFunc {
	return func(ctx context.Context, userID int64, _ []byte) (any, error) {
		out, err := fn(ctx, userID)
		if err != nil {
			return nil, err
		}
		return nonNil(out), nil
	}
}

type success struct {
	Success bool `json:"success"`
}

// deleteByID adapts a delete method taking {"id": n}.
func deleteByID(fn func(ctx context.Context, userID, id int64) error) handlerFunc {
	return func(ctx context.Context, userID int64, raw []byte) (any, error) {
		in, err := DecodeInput[struct {
			ID int64 `json:"id"`
		}](raw)
		if err != nil {
			return nil, err
		}
		if err := fn(ctx, userID, in.ID); err != nil {
			return nil, err
		}
		return success{Success: true}, nil
	}
}

func action(fn func(ctx context.Context, userID int64) error) handlerFunc {
	return func(ctx context.Context, userID int64, _ []byte) (any, error) {
		if err := fn(ctx, userID); err != nil {
			return nil, err
		}
		return success{Success: true}, nil
	}
}

// nonNil turns nil slices into empty ones so lists encode as [].
func nonNil(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return reflect.MakeSlice(rv.Type(), 0, 0).Interface()
	}
	return v
}
