package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// QueryOption narrows or orders a gorm statement.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type optionFunc func(db *gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

type Operator string

const (
	EQ  Operator = "="
	GTE Operator = ">="
	LTE Operator = "<="
	IN  Operator = "IN"
)

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

// ApplyOperator adds a single comparison on a column.
func ApplyOperator(c Condition) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if c.Operator == IN {
			return db.Where(fmt.Sprintf("%s IN ?", c.Field), c.Value)
		}
		return db.Where(fmt.Sprintf("%s %s ?", c.Field, c.Operator), c.Value)
	})
}

type QuerySortBy struct {
	Allow map[string]bool
	Field string
	Desc  bool
}

// WithSortBy orders by Field when it is allowed, else by id. Ties always
// fall back to id so results are deterministic.
func WithSortBy(s QuerySortBy) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		field := strings.TrimSpace(s.Field)
		if field == "" || (s.Allow != nil && !s.Allow[field]) {
			field = "id"
		}
		direction := "ASC"
		if s.Desc {
			direction = "DESC"
		}
		db = db.Order(fmt.Sprintf("%s %s", field, direction))
		if field != "id" {
			db = db.Order(fmt.Sprintf("id %s", direction))
		}
		return db
	})
}

func WithLimit(limit int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}
