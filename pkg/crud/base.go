// Package crud implements the entity-agnostic data-access layer: one
// generic algorithm set for create / read / partial update / soft delete /
// paginated listing, shared by every entity repository. Concrete
// repositories supply their table type, output projection and default
// ordering through a Spec value instead of inheritance.
package crud

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Keyed is the one capability the generic algorithms need from an entity.
type Keyed interface {
	PrimaryKey() uuid.UUID
}

// Spec fixes the per-entity parameters of the generic repository.
type Spec struct {
	// DefaultOrder is applied to paginated lists unless overridden,
	// e.g. "created_at DESC".
	DefaultOrder string
	// Columns is the output projection selected for reads and lists.
	Columns []string
}

// Crud is the generic repository over entity T with output schema O.
// All operations run in the session's transaction.
type Crud[T Keyed, O any] struct {
	s    *Session
	spec Spec
}

func New[T Keyed, O any](s *Session, spec Spec) *Crud[T, O] {
	return &Crud[T, O]{s: s, spec: spec}
}

// Session exposes the session the repository is bound to, so callers can
// checkpoint or roll back around multi-step operations.
func (c *Crud[T, O]) Session() *Session {
	return c.s
}

type filterClause struct {
	query string
	args  []any
}

type queryOptions struct {
	includeDeleted bool
	allowMissing   bool
	permanent      bool
	order          string
	filters        []filterClause
	join           func(*gorm.DB) *gorm.DB
	baseQuery      func(*gorm.DB) *gorm.DB
}

type QueryOpt func(*queryOptions)

// WithDeleted disables the active-only restriction, exposing soft-deleted
// rows.
func WithDeleted() QueryOpt {
	return func(o *queryOptions) { o.includeDeleted = true }
}

// AllowMissing turns a zero-row update/delete into a silent no-op instead
// of ErrNotFound.
func AllowMissing() QueryOpt {
	return func(o *queryOptions) { o.allowMissing = true }
}

// Permanently makes DeleteByID remove the row instead of stamping
// deleted_at.
func Permanently() QueryOpt {
	return func(o *queryOptions) { o.permanent = true }
}

// WithOrder overrides the repository's default list ordering.
func WithOrder(order string) QueryOpt {
	return func(o *queryOptions) { o.order = order }
}

// WithFilter adds an extra predicate, applied to both the count and the
// select side of paginated lists.
func WithFilter(query string, args ...any) QueryOpt {
	return func(o *queryOptions) {
		o.filters = append(o.filters, filterClause{query: query, args: args})
	}
}

// WithJoin decorates the query with joins before filtering.
func WithJoin(fn func(*gorm.DB) *gorm.DB) QueryOpt {
	return func(o *queryOptions) { o.join = fn }
}

// WithBaseQuery replaces the base select of a paginated list entirely
// (e.g. a cross-table projection); ordering, pagination and the count
// wrapping still apply uniformly.
func WithBaseQuery(fn func(*gorm.DB) *gorm.DB) QueryOpt {
	return func(o *queryOptions) { o.baseQuery = fn }
}

// Page is the uniform paginated result shape.
type Page[O any] struct {
	Total int64 `json:"total"`
	Items []O   `json:"items"`
}

func applyOpts(opts []QueryOpt) *queryOptions {
	o := &queryOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (c *Crud[T, O]) model() *gorm.DB {
	return c.s.DB().Model(new(T))
}

func (c *Crud[T, O]) applyPredicates(stmt *gorm.DB, o *queryOptions) *gorm.DB {
	if !o.includeDeleted {
		stmt = stmt.Where("deleted_at IS NULL")
	}
	for _, f := range o.filters {
		stmt = stmt.Where(f.query, f.args...)
	}
	return stmt
}

// Create inserts the entity and returns its output projection. The row is
// flushed into the session's transaction; durability is the session
// checkpoint's business. extra carries caller-supplied column values
// merged on top of the input (derived keys and the like).
func (c *Crud[T, O]) Create(in *T, extra map[string]any) (*O, error) {
	tx := c.s.DB()
	if err := tx.Create(in).Error; err != nil {
		return nil, storageErr("create", err)
	}
	if len(extra) > 0 {
		if err := tx.Model(in).Updates(extra).Error; err != nil {
			return nil, storageErr("create", err)
		}
	}
	return c.GetByID((*in).PrimaryKey())
}

// FindOne returns the projection of the single row matching the options,
// or ErrNotFound.
func (c *Crud[T, O]) FindOne(opts ...QueryOpt) (*O, error) {
	o := applyOpts(opts)
	stmt := c.applyPredicates(c.model(), o)
	if o.join != nil {
		stmt = o.join(stmt)
	}
	if len(c.spec.Columns) > 0 {
		stmt = stmt.Select(c.spec.Columns)
	}

	var out O
	if err := stmt.Take(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr("select", err)
	}
	return &out, nil
}

// GetByID looks up one row by primary key; soft-deleted rows are hidden
// unless WithDeleted is given.
func (c *Crud[T, O]) GetByID(id uuid.UUID, opts ...QueryOpt) (*O, error) {
	return c.FindOne(append(opts, WithFilter("id = ?", id))...)
}

// UpdateByID applies only the explicitly-set fields in changes, stamping
// modified_at with the server time unless the caller set it. A lookup
// matching zero rows is ErrNotFound unless AllowMissing is given; an
// empty change set succeeds with zero effect.
func (c *Crud[T, O]) UpdateByID(id uuid.UUID, changes map[string]any, opts ...QueryOpt) error {
	o := applyOpts(opts)
	if len(changes) == 0 {
		return nil
	}

	stamped := make(map[string]any, len(changes)+1)
	for k, v := range changes {
		stamped[k] = v
	}
	if _, ok := stamped["modified_at"]; !ok {
		stamped["modified_at"] = gorm.Expr("CURRENT_TIMESTAMP")
	}

	stmt := c.applyPredicates(c.model().Where("id = ?", id), o)
	res := stmt.Updates(stamped)
	if res.Error != nil {
		return storageErr("update", res.Error)
	}
	if res.RowsAffected == 0 && !o.allowMissing {
		return ErrNotFound
	}
	return nil
}

// DeleteByID soft-deletes by default (stamping deleted_at with the server
// time); Permanently removes the row. Not-found policy matches UpdateByID.
func (c *Crud[T, O]) DeleteByID(id uuid.UUID, opts ...QueryOpt) error {
	o := applyOpts(opts)

	var res *gorm.DB
	if o.permanent {
		stmt := c.s.DB().Where("id = ?", id)
		for _, f := range o.filters {
			stmt = stmt.Where(f.query, f.args...)
		}
		res = stmt.Delete(new(T))
	} else {
		// soft delete only ever targets active rows
		stmt := c.model().Where("id = ?", id).Where("deleted_at IS NULL")
		for _, f := range o.filters {
			stmt = stmt.Where(f.query, f.args...)
		}
		res = stmt.Updates(map[string]any{
			"deleted_at":  gorm.Expr("CURRENT_TIMESTAMP"),
			"modified_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	}

	if res.Error != nil {
		return storageErr("delete", res.Error)
	}
	if res.RowsAffected == 0 && !o.allowMissing {
		return ErrNotFound
	}
	return nil
}

// PaginatedList runs a count and a bounded ordered select over the same
// predicate. When the count is zero the select is skipped entirely.
func (c *Crud[T, O]) PaginatedList(limit, offset int, opts ...QueryOpt) (*Page[O], error) {
	o := applyOpts(opts)

	countStmt := c.applyPredicates(c.model(), o)
	if o.join != nil {
		countStmt = o.join(countStmt)
	}

	var total int64
	if err := countStmt.Count(&total).Error; err != nil {
		return nil, storageErr("count", err)
	}

	page := &Page[O]{Total: total, Items: []O{}}
	if total == 0 {
		return page, nil
	}

	var stmt *gorm.DB
	if o.baseQuery != nil {
		stmt = o.baseQuery(c.s.DB())
		for _, f := range o.filters {
			stmt = stmt.Where(f.query, f.args...)
		}
	} else {
		stmt = c.applyPredicates(c.model(), o)
		if len(c.spec.Columns) > 0 {
			stmt = stmt.Select(c.spec.Columns)
		}
	}
	if o.join != nil {
		stmt = o.join(stmt)
	}

	order := o.order
	if order == "" {
		order = c.spec.DefaultOrder
	}

	if err := stmt.Order(order).Limit(limit).Offset(offset).Find(&page.Items).Error; err != nil {
		return nil, storageErr("select", err)
	}
	return page, nil
}
