package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/hivx/My-store/pkg/errors"
)

// downstreamErrorResponse mirrors the httputil.ErrorResponse envelope so
// structured error bodies from gateway calls can be surfaced verbatim.
type downstreamErrorResponse struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError reads the body of a non-2xx response and translates it
// into an AppError. The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, gatewayName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", gatewayName, resp.StatusCode, err)
	}

	var downstream downstreamErrorResponse
	if json.Unmarshal(bodyBytes, &downstream) == nil && downstream.Error != nil {
		return &apperrors.AppError{
			Code:    downstream.Error.Code,
			Message: fmt.Sprintf("%s: %s", gatewayName, downstream.Error.Message),
			Status:  resp.StatusCode,
			Err:     apperrors.ErrInternal,
		}
	}

	return fmt.Errorf("%s returned status %d: %s", gatewayName, resp.StatusCode, string(bodyBytes))
}
