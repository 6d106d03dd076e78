package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/coachboard/coachboard-client/internal/querycache"
)

const defaultListLimit = 100

type validator interface {
	Validate() error
}

// Resource is a CRUD collection: T is the entity, C the create payload and U
// the partial update payload.
type Resource[T, C, U any] struct {
	client *Client
	name   string
	path   string
}

func newResource[T, C, U any](c *Client, name string) *Resource[T, C, U] {
	return &Resource[T, C, U]{client: c, name: name, path: "/" + name}
}

func (r *Resource[T, C, U]) List(ctx context.Context, page Page) ([]T, error) {
	query := page.values(defaultListLimit)
	key := querycache.Key(r.name, "list", query.Get("skip"), query.Get("limit"))
	return querycache.Load(ctx, r.client.cache, key, func(ctx context.Context) ([]T, error) {
		out := []T{}
		err := r.client.doJSON(ctx, http.MethodGet, r.path, query, nil, &out)
		return out, err
	})
}

func (r *Resource[T, C, U]) Get(ctx context.Context, id int64) (*T, error) {
	sid := strconv.FormatInt(id, 10)
	v, err := querycache.Load(ctx, r.client.cache, querycache.Key(r.name, sid), func(ctx context.Context) (T, error) {
		var out T
		err := r.client.doJSON(ctx, http.MethodGet, r.path+"/"+sid, nil, nil, &out)
		return out, err
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create validates in (filling defaults) before sending it.
func (r *Resource[T, C, U]) Create(ctx context.Context, in *C) (*T, error) {
	if v, ok := any(in).(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	var out T
	if err := r.client.doJSON(ctx, http.MethodPost, r.path, nil, in, &out); err != nil {
		return nil, err
	}
	r.client.invalidate(ctx, r.name, resAnalytics)
	return &out, nil
}

func (r *Resource[T, C, U]) Update(ctx context.Context, id int64, in *U) (*T, error) {
	if v, ok := any(in).(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	var out T
	if err := r.client.doJSON(ctx, http.MethodPut, r.path+"/"+strconv.FormatInt(id, 10), nil, in, &out); err != nil {
		return nil, err
	}
	r.client.invalidate(ctx, r.name, resAnalytics)
	return &out, nil
}

func (r *Resource[T, C, U]) Delete(ctx context.Context, id int64) error {
	if err := r.client.doJSON(ctx, http.MethodDelete, r.path+"/"+strconv.FormatInt(id, 10), nil, nil, nil); err != nil {
		return err
	}
	r.client.invalidate(ctx, r.name, resAnalytics)
	return nil
}
