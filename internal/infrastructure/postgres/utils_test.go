package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
)

func TestMapWriteErr(t *testing.T) {
	assert.ErrorIs(t, mapWriteErr("x", &pgconn.PgError{Code: "23505"}), domain.ErrDuplicate)
	assert.ErrorIs(t, mapWriteErr("x", &pgconn.PgError{Code: "23503"}), domain.ErrConflict)

	other := errors.New("boom")
	err := mapWriteErr("x", other)
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, domain.ErrDuplicate)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%tube%`, likePattern(" tube "))
	assert.Equal(t, `%50\%\_x%`, likePattern("50%_x"))
}

func TestArgList(t *testing.T) {
	var a argList
	assert.Equal(t, "$1", a.add("a"))
	assert.Equal(t, "$2", a.add(2))
	assert.Len(t, a.args, 2)
}
