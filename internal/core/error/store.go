package errx

import (
	"database/sql"
	"errors"
	"net/http"
)

// WrapStore maps appointment store errors to the unified Error type.
func WrapStore(err error) *Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return New(err, http.StatusNotFound, StoreNotFoundMessage)
	}

	return New(err, http.StatusInternalServerError, StoreErrorMessage)
}
