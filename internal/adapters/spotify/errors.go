package spotify

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/zmb3/spotify/v2"
)

// wrapAPIError maps client and transport errors onto domain failure kinds.
func wrapAPIError(op string, err error) error {
	var pe *domain.PipelineError
	if errors.As(err, &pe) {
		return fmt.Errorf("spotify adapter: %s: %w", op, err)
	}

	status := 0
	var apiErr spotify.Error
	var apiErrPtr *spotify.Error
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Status
	case errors.As(err, &apiErrPtr):
		status = apiErrPtr.Status
	}
	if status != 0 {
		kind := domain.ErrTransportFailure
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			kind = domain.ErrAuthFailure
		}
		return domain.NewError(kind, "spotify "+op, err).WithDetail(fmt.Sprintf("status %d", status))
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return domain.NewError(domain.ErrInvalidResponse, "spotify "+op, err)
	}

	return domain.NewError(domain.ErrTransportFailure, "spotify "+op, err)
}
