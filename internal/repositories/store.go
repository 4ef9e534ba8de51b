// Package repositories holds the document store used by the services.
//
// A Store groups one Repository per collection. Two backends exist: a gorm
// backend (postgres in production, sqlite in tests and local runs) and a
// MongoDB backend. Field names in a Query are storage names, which are the
// same snake_case names in both backends.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"taskerhub/backend/internal/models"

	"github.com/gofrs/uuid"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrEmptyFilter  = errors.New("refusing to run an unfiltered delete")
)

type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

func ParseOperator(s string) (Operator, bool) {
	switch Operator(s) {
	case OpEq, OpGt, OpGte, OpLt, OpLte, OpIn:
		return Operator(s), true
	}
	return "", false
}

type Condition struct {
	Field string
	Op    Operator
	Value interface{}
}

type SortField struct {
	Field string
	Desc  bool
}

type Query struct {
	Conditions []Condition
	Sort       []SortField
	Offset     int
	Limit      int
}

// Eq is shorthand for a query with a single equality condition.
func Eq(field string, value interface{}) Query {
	return Query{}.Where(field, OpEq, value)
}

func (q Query) Where(field string, op Operator, value interface{}) Query {
	conds := make([]Condition, len(q.Conditions), len(q.Conditions)+1)
	copy(conds, q.Conditions)
	q.Conditions = append(conds, Condition{Field: field, Op: op, Value: value})
	return q
}

func (q Query) OrderBy(field string, desc bool) Query {
	sorts := make([]SortField, len(q.Sort), len(q.Sort)+1)
	copy(sorts, q.Sort)
	q.Sort = append(sorts, SortField{Field: field, Desc: desc})
	return q
}

func (q Query) Page(offset, limit int) Query {
	q.Offset = offset
	q.Limit = limit
	return q
}

var fieldNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func checkField(name string) error {
	if !fieldNamePattern.MatchString(name) {
		return fmt.Errorf("invalid field name %q", name)
	}
	return nil
}

type Repository[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	Find(ctx context.Context, q Query) ([]T, error)
	Count(ctx context.Context, q Query) (int64, error)
	Create(ctx context.Context, doc *T) error
	Update(ctx context.Context, doc *T) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteWhere(ctx context.Context, q Query) (int64, error)
}

type Store interface {
	Users() Repository[models.User]
	Profiles() Repository[models.Profile]
	Tasks() Repository[models.Task]
	Payments() Repository[models.Payment]

	// WithTransaction runs fn against a Store bound to one unit of work.
	// Backends without multi-document transactions run fn directly.
	WithTransaction(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error
	Close() error
}
