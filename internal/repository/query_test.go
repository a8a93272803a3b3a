package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, "%abc%", containsPattern("abc"))
	assert.Equal(t, `%50\% off\_now%`, containsPattern("50% off_now"))
	assert.Equal(t, `%a\\b%`, containsPattern(`a\b`))
}

func TestWhereBuilder(t *testing.T) {
	var where whereBuilder
	assert.Equal(t, "", where.String())

	where.add("status = " + where.bind("approved"))
	where.search("delhi", "state", "inst")
	where.search("", "ignored")

	assert.Equal(t, " WHERE status = $1 AND (state ILIKE $2 OR inst ILIKE $2)", where.String())
	assert.Equal(t, []interface{}{"approved", "%delhi%"}, where.args)
}
