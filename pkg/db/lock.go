package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForUpdate adds a row lock to the query when the dialect supports it. SQLite
// serialises writers on its own and rejects the clause.
func ForUpdate(q *gorm.DB) *gorm.DB {
	if q.Dialector != nil && q.Dialector.Name() == "postgres" {
		return q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}
