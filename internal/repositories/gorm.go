package repositories

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"taskerhub/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormRepository[T any] struct {
	db *gorm.DB
}

func (r *gormRepository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var doc T
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &doc, nil
}

func (r *gormRepository[T]) Find(ctx context.Context, q Query) ([]T, error) {
	tx, err := applyConditions(r.db.WithContext(ctx).Model(new(T)), q.Conditions)
	if err != nil {
		return nil, err
	}

	for _, s := range q.Sort {
		if err := checkField(s.Field); err != nil {
			return nil, err
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Field}, Desc: s.Desc})
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	docs := []T{}
	if err := tx.Find(&docs).Error; err != nil {
		return nil, translateGormError(err)
	}
	return docs, nil
}

func (r *gormRepository[T]) Count(ctx context.Context, q Query) (int64, error) {
	tx, err := applyConditions(r.db.WithContext(ctx).Model(new(T)), q.Conditions)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return 0, translateGormError(err)
	}
	return count, nil
}

func (r *gormRepository[T]) Create(ctx context.Context, doc *T) error {
	return translateGormError(r.db.WithContext(ctx).Create(doc).Error)
}

func (r *gormRepository[T]) Update(ctx context.Context, doc *T) error {
	result := r.db.WithContext(ctx).Model(doc).Select("*").Updates(doc)
	if result.Error != nil {
		return translateGormError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository[T]) DeleteByID(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return translateGormError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository[T]) DeleteWhere(ctx context.Context, q Query) (int64, error) {
	if len(q.Conditions) == 0 {
		return 0, ErrEmptyFilter
	}

	tx, err := applyConditions(r.db.WithContext(ctx), q.Conditions)
	if err != nil {
		return 0, err
	}

	result := tx.Delete(new(T))
	if result.Error != nil {
		return 0, translateGormError(result.Error)
	}
	return result.RowsAffected, nil
}

func applyConditions(tx *gorm.DB, conds []Condition) (*gorm.DB, error) {
	for _, c := range conds {
		if err := checkField(c.Field); err != nil {
			return nil, err
		}

		col := clause.Column{Name: c.Field}
		switch c.Op {
		case OpEq:
			tx = tx.Where(clause.Eq{Column: col, Value: c.Value})
		case OpGt:
			tx = tx.Where(clause.Gt{Column: col, Value: c.Value})
		case OpGte:
			tx = tx.Where(clause.Gte{Column: col, Value: c.Value})
		case OpLt:
			tx = tx.Where(clause.Lt{Column: col, Value: c.Value})
		case OpLte:
			tx = tx.Where(clause.Lte{Column: col, Value: c.Value})
		case OpIn:
			tx = tx.Where(clause.IN{Column: col, Values: toSlice(c.Value)})
		default:
			return nil, fmt.Errorf("unsupported operator %q", c.Op)
		}
	}
	return tx, nil
}

func toSlice(v interface{}) []interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []interface{}{v}
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func translateGormError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value") {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

// GormStore is the relational Store backend.
type GormStore struct {
	db       *gorm.DB
	users    *gormRepository[models.User]
	profiles *gormRepository[models.Profile]
	tasks    *gormRepository[models.Task]
	payments *gormRepository[models.Payment]
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:       db,
		users:    &gormRepository[models.User]{db: db},
		profiles: &gormRepository[models.Profile]{db: db},
		tasks:    &gormRepository[models.Task]{db: db},
		payments: &gormRepository[models.Payment]{db: db},
	}
}

func (s *GormStore) Users() Repository[models.User]       { return s.users }
func (s *GormStore) Profiles() Repository[models.Profile] { return s.profiles }
func (s *GormStore) Tasks() Repository[models.Task]       { return s.tasks }
func (s *GormStore) Payments() Repository[models.Payment] { return s.payments }

func (s *GormStore) WithTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}

func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&models.User{}, &models.Profile{}, &models.Task{}, &models.Payment{})
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
