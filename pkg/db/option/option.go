package option

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueryOption narrows or decorates a gorm query.
type QueryOption func(tx *gorm.DB) *gorm.DB

type QuerySortBy struct {
	SortBy  string
	OrderBy string
	Allow   map[string]bool
}

func Apply(tx *gorm.DB, opts ...QueryOption) *gorm.DB {
	for _, opt := range opts {
		tx = opt(tx)
	}
	return tx
}

func WithLimit(limit int) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return tx
		}
		return tx.Limit(limit)
	}
}

func WithSortBy(s QuerySortBy) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		if s.SortBy == "" || (s.Allow != nil && !s.Allow[s.SortBy]) {
			return tx
		}
		return tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: s.SortBy},
			Desc:   s.OrderBy == "desc" || s.OrderBy == "DESC",
		})
	}
}

// WithSelect restricts the selected columns.
func WithSelect(columns ...string) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Select(columns)
	}
}

func WithLockingUpdate() QueryOption {
	return LockingUpdate
}

func LockingUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
