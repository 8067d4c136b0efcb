package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "idx_books_isbn"}, ErrDuplicate},
		{"deadline", context.DeadlineExceeded, ErrUnavailable},
		{"serialization", &pgconn.PgError{Code: "40001"}, ErrUnavailable},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, ErrUnavailable},
		{"connection class", &pgconn.PgError{Code: "08006"}, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("op", tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassify_PassThrough(t *testing.T) {
	assert.NoError(t, classify("op", nil))

	plain := errors.New("syntax error")
	got := classify("op", plain)
	assert.ErrorIs(t, got, plain)
	assert.NotErrorIs(t, got, ErrNotFound)
	assert.NotErrorIs(t, got, ErrUnavailable)
	assert.NotErrorIs(t, got, ErrDuplicate)

	check := &pgconn.PgError{Code: "23514"}
	assert.NotErrorIs(t, classify("op", check), ErrDuplicate)
}
