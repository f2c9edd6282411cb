package remote

import "errors"

var (
	// ErrInvalidPage indicates a page number below 1.
	ErrInvalidPage = errors.New("page numbers start at 1")

	// ErrUnexpectedStatus indicates a non-200 response.
	ErrUnexpectedStatus = errors.New("unexpected response status")

	// ErrInvalidPayload indicates a response body that is not a swatch page.
	ErrInvalidPayload = errors.New("invalid page payload")
)
