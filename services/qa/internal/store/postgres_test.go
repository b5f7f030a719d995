package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/example/wisora/services/qa/internal/domain"
)

func TestMapErr(t *testing.T) {
	if mapErr(nil) != nil {
		t.Fatal("nil must stay nil")
	}
	if !errors.Is(mapErr(pgx.ErrNoRows), domain.ErrNotFound) {
		t.Fatal("no rows must map to ErrNotFound")
	}
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	if !errors.Is(mapErr(unique), domain.ErrConflict) {
		t.Fatal("unique violation must map to ErrConflict")
	}
	other := errors.New("connection reset")
	if mapErr(other) != other {
		t.Fatal("other errors must pass through")
	}
}

func TestSchemaEmbedded(t *testing.T) {
	if len(schema) == 0 {
		t.Fatal("schema.sql must be embedded")
	}
}
