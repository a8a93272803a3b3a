package repository

import (
	"database/sql"
	"fmt"
	"strings"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching term anywhere in a column.
// LIKE metacharacters inside term match literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// whereBuilder accumulates positional conditions for dynamic list queries.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

// bind registers a value and returns its placeholder.
func (b *whereBuilder) bind(value interface{}) string {
	b.args = append(b.args, value)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *whereBuilder) add(clause string) {
	b.clauses = append(b.clauses, clause)
}

// search adds an OR of ILIKE conditions over columns sharing one placeholder.
func (b *whereBuilder) search(term string, columns ...string) {
	if term == "" || len(columns) == 0 {
		return
	}
	placeholder := b.bind(containsPattern(term))
	parts := make([]string, len(columns))
	for i, column := range columns {
		parts[i] = fmt.Sprintf("%s ILIKE %s", column, placeholder)
	}
	b.add("(" + strings.Join(parts, " OR ") + ")")
}

func (b *whereBuilder) String() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

// statusCount is a row of a GROUP BY status aggregate.
type statusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

func requireAffected(result sql.Result, action string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", action, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
