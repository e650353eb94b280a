package remote

import "errors"

var (
	ErrInvalidEndpoint   = errors.New("invalid webhook endpoint")
	ErrPushRejected      = errors.New("push rejected by endpoint")
	ErrMalformedResponse = errors.New("malformed response")
)
