package repos

import (
	"gorm.io/gorm"
)

type Filter interface {
	Apply(query *gorm.DB) *gorm.DB
}

type WhereFilter struct {
	SQL  string
	Args []any
}

func (f WhereFilter) Apply(query *gorm.DB) *gorm.DB {
	return query.Where(f.SQL, f.Args...)
}

func FilterByExitnode(exitnode string) WhereFilter {
	return WhereFilter{
		SQL:  "item_sets.exitnode = ?",
		Args: []any{exitnode},
	}
}

func FilterBySetName(name string) WhereFilter {
	return WhereFilter{
		SQL:  "item_sets.name = ?",
		Args: []any{name},
	}
}

func RawFilter(sql string) WhereFilter {
	return WhereFilter{
		SQL: sql,
	}
}
