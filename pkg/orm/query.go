// Package orm is a thin chainable wrapper over *gorm.DB used by repositories.
// Every terminal call records its latency in the db query histogram.
package orm

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"gorm.io/gorm"
)

// ErrNotFound aliases gorm's record-not-found error.
var ErrNotFound = gorm.ErrRecordNotFound

// IsNotFound reports whether err is a missing-row error.
func IsNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// IsDuplicate reports whether err is a unique-constraint violation. The
// sqlite driver returns sqlite3.Error by value, which gorm's translator does
// not recognise, so that error is matched here as well as ErrDuplicatedKey.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

type Query struct {
	db *gorm.DB
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// DB starts a query on the global connection.
func DB() *Query {
	return &Query{db: database.DB}
}

// Use starts a query on db, which may be a transaction handle.
func Use(db *gorm.DB) *Query {
	return &Query{db: db}
}

func (q *Query) WithContext(ctx context.Context) *Query {
	return &Query{db: q.db.WithContext(ctx)}
}

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query interface{}, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Order(value interface{}) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Limit(n int) *Query {
	return &Query{db: q.db.Limit(n)}
}

func (q *Query) Offset(n int) *Query {
	return &Query{db: q.db.Offset(n)}
}

func (q *Query) Preload(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Preload(query, args...)}
}

func (q *Query) Get(dest interface{}) error {
	defer metrics.ObserveDBQuery("select", time.Now())
	return q.db.Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	defer metrics.ObserveDBQuery("select", time.Now())
	return q.db.First(dest).Error
}

func (q *Query) Count() (int64, error) {
	defer metrics.ObserveDBQuery("select", time.Now())
	var n int64
	err := q.db.Count(&n).Error
	return n, err
}

func (q *Query) Create(v interface{}) error {
	defer metrics.ObserveDBQuery("insert", time.Now())
	return q.db.Create(v).Error
}

func (q *Query) Save(v interface{}) error {
	defer metrics.ObserveDBQuery("update", time.Now())
	return q.db.Save(v).Error
}

// Updates applies column values and returns the number of affected rows.
func (q *Query) Updates(values interface{}) (int64, error) {
	defer metrics.ObserveDBQuery("update", time.Now())
	res := q.db.Updates(values)
	return res.RowsAffected, res.Error
}

func (q *Query) Delete(v interface{}, conds ...interface{}) error {
	defer metrics.ObserveDBQuery("delete", time.Now())
	return q.db.Delete(v, conds...).Error
}

// Paginate fills dest with one page and returns the page metadata.
func (q *Query) Paginate(dest interface{}, page, perPage int) (Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	total, err := q.Count()
	if err != nil {
		return Pagination{}, err
	}

	defer metrics.ObserveDBQuery("select", time.Now())
	if err := q.db.Offset((page - 1) * perPage).Limit(perPage).Find(dest).Error; err != nil {
		return Pagination{}, err
	}

	return Pagination{
		Page:     page,
		PerPage:  perPage,
		Total:    total,
		LastPage: int(math.Max(1, math.Ceil(float64(total)/float64(perPage)))),
	}, nil
}

