package apiclient

import (
	"errors"

	"github.com/knpstore/sport-store/internal/apierror"
)

// Message is the text shown to the user for a failed call: the first structured
// problem as "Field: msg", else the plain detail, else the generic message.
// Transport failures always give the generic message.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail.Format(apierror.GenericMessage)
	}
	return apierror.GenericMessage
}

// RawMessage is like Message but falls back to the raw response body when the
// API answered without a detail.
func RawMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail.IsZero() && len(apiErr.Raw) > 0 {
		return string(apiErr.Raw)
	}
	return Message(err)
}
