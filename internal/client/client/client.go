package client

import "context"

// Client performs one API call.
//
// token is sent verbatim as the Authorization header. out receives the
// decoded JSON body; pass *models.Empty when the call has no content. When
// out implements Validate() error, a failed validation is reported as
// ErrDecodingFailed.
type Client interface {
	Do(ctx context.Context, ep Endpoint, token string, out any) error
}
