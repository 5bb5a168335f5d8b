package service

import (
	"github.com/cockroachdb/errors"
	"google.golang.org/api/googleapi"
)

var (
	// ErrNotFound marks gateway errors for entities that do not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized marks gateway errors for a rejected token.
	ErrUnauthorized = errors.New("token rejected by provider")
)

// StatusOf returns the HTTP status and response body carried by a gateway
// error. Both are zero when the error never reached the provider.
func StatusOf(err error) (int, string) {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Body
	}
	return 0, ""
}
