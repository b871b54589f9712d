package database

import (
	"errors"
	"net/http"
	"testing"

	"backend/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestGormConfigTranslatesDriverErrors(t *testing.T) {
	// Without TranslateError, Postgres unique violations surface as
	// *pgconn.PgError and every errors.Is(err, gorm.ErrDuplicatedKey)
	// branch is dead against a live database.
	assert.True(t, gormConfig().TranslateError)
}

func TestUnavailableWrapsIntoTaxonomy(t *testing.T) {
	assert.NoError(t, unavailable(nil))

	err := unavailable(errors.New("dial tcp: connection refused"))
	assert.ErrorIs(t, err, apperr.ErrBackendUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, apperr.Status(err))
}
