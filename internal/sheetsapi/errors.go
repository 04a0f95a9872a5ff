package sheetsapi

import (
	"errors"
	"fmt"

	"github.com/imroc/req/v3"
)

var (
	ErrInvalidCredentials = errors.New("sheets: credentials missing client_email or private_key")
	ErrNoAccessToken      = errors.New("sheets: token endpoint returned no access token")
	ErrMalformedReply     = errors.New("sheets: malformed batchUpdate reply")
)

// APIError is the structured error payload returned by Google APIs.
type APIError struct {
	Detail struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

var _ error = (*APIError)(nil)

func (e *APIError) Error() string {
	return fmt.Sprintf("sheets api: %d %s: %s", e.Detail.Code, e.Detail.Status, e.Detail.Message)
}

// handleAPIError folds the transport error and the response state into
// a single error, keeping the operation name in the chain.
func handleAPIError(resp *req.Response, requestError error, operation string) error {
	if requestError != nil {
		return fmt.Errorf("http request error: %s %w", operation, requestError)
	}

	if resp.IsErrorState() {
		if apiErr, ok := resp.ErrorResult().(*APIError); ok {
			return fmt.Errorf("api error: %s %w", operation, apiErr)
		}
		return fmt.Errorf("api error: %s %s %s", operation, resp.Status, resp.String())
	}

	return nil
}
