package remote

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/shelfsync/shelfsync/models"
)

// Error codes the record service puts in the JSON error body. They
// disambiguate statuses that cover more than one condition (409, 404).
const (
	codeConflict     = "VERSION_CONFLICT"
	codeIDCollision  = "ID_COLLISION"
	codeTokenExpired = "TOKEN_EXPIRED"
	codeZoneNotFound = "ZONE_NOT_FOUND"
	codeSchemaTooNew = "SCHEMA_TOO_NEW"
)

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))

	var errResp models.ErrorResponse
	if json.Unmarshal(resp.Body(), &errResp) == nil {
		switch errResp.Error {
		case codeConflict:
			return fmt.Errorf("%w: %s", ErrConflict, body)
		case codeIDCollision:
			return fmt.Errorf("%w: %s", ErrIDCollision, body)
		case codeTokenExpired:
			return fmt.Errorf("%w: %s", ErrTokenExpired, body)
		case codeZoneNotFound:
			return fmt.Errorf("%w: %s", ErrZoneNotFound, body)
		case codeSchemaTooNew:
			return fmt.Errorf("%w: %s", ErrSchemaTooNew, body)
		}
	}

	switch resp.StatusCode() {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, body)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, body)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, body)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, body)
	case http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: retryAfter(resp, errResp)}
	case http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrInternalServerError, body)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", ErrUnavailable, body)
	default:
		if body == "" {
			body = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
	}
}

// retryAfter prefers the JSON hint over the Retry-After header.
func retryAfter(resp *resty.Response, errResp models.ErrorResponse) time.Duration {
	if errResp.RetryAfterSeconds > 0 {
		return time.Duration(errResp.RetryAfterSeconds) * time.Second
	}
	if secs, err := strconv.Atoi(resp.Header().Get("Retry-After")); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
