// Copyright (c) 2026 Aegis. All rights reserved.

package dberr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegis-id/aegis/internal/platform/apperr"
)

func TestWrap(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "no rows maps to 404",
			err:        pgx.ErrNoRows,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "wrapped no rows maps to 404",
			err:        fmt.Errorf("query users: %w", pgx.ErrNoRows),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unique violation maps to 409 with caller message",
			err:        &pgconn.PgError{Code: pgerrcode.UniqueViolation},
			wantStatus: http.StatusConflict,
			wantMsg:    "Username or Phone already exists",
		},
		{
			name:       "anything else maps to 500",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			wrapped := Wrap(testCase.err, "Username or Phone already exists")
			appError := apperr.As(wrapped)
			require.NotNil(t, appError)
			assert.Equal(t, testCase.wantStatus, appError.HTTPStatus)
			if testCase.wantMsg != "" {
				assert.Equal(t, testCase.wantMsg, appError.Message)
			}
		})
	}

	assert.NoError(t, Wrap(nil, "unused"))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
	assert.False(t, IsUniqueViolation(nil))
}
