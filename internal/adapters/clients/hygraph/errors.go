package hygraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jsamuelsen/flashcards/internal/adapters/clients"
	"github.com/jsamuelsen/flashcards/internal/domain"
)

// Error codes seen in GraphQL "extensions.code". Hygraph leaves many errors
// without a code, so messages are matched as a fallback.
const (
	codeNotFound          = "NOT_FOUND"
	codeConflict          = "CONFLICT"
	codeValidation        = "VALIDATION_ERROR"
	codeBadUserInput      = "BAD_USER_INPUT"
	codeGraphQLValidation = "GRAPHQL_VALIDATION_FAILED"
	codeForbidden         = "FORBIDDEN"
	codeUnauthorized      = "UNAUTHORIZED"
	codeUnauthenticated   = "UNAUTHENTICATED"
)

// maxErrorBody caps how much of a failed response is read.
const maxErrorBody = 64 << 10

// graphQLError is one entry of a GraphQL "errors" array.
type graphQLError struct {
	Message    string `json:"message"`
	Path       []any  `json:"path,omitempty"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// errorBody covers GraphQL envelopes and the plain {"message": ...} bodies
// returned by the API gateway.
type errorBody struct {
	Errors  []graphQLError `json:"errors"`
	Message string         `json:"message"`
}

func (b *errorBody) code() string {
	if len(b.Errors) > 0 {
		return b.Errors[0].Extensions.Code
	}

	return ""
}

func (b *errorBody) message() string {
	if len(b.Errors) > 0 && b.Errors[0].Message != "" {
		return b.Errors[0].Message
	}

	return b.Message
}

// parseErrorBody returns nil when body is empty or not JSON (storage
// backends answer in XML).
func parseErrorBody(body io.Reader) *errorBody {
	if body == nil {
		return nil
	}

	var parsed errorBody
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&parsed); err != nil {
		return nil
	}
	if parsed.code() == "" && parsed.message() == "" {
		return nil
	}

	return &parsed
}

// call names what a request is for so failures can be reported in domain terms.
type call struct {
	name   string
	entity string
	id     string
}

// mapClientError translates transport failures from clients.Client.
func mapClientError(err error, service string, c call) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", c.name, err)

	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(service, "circuit breaker open during "+c.name)

	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(service, "max retries exceeded during "+c.name)

	default:
		return domain.NewUnavailableError(service, fmt.Sprintf("%s failed: %v", c.name, err))
	}
}

// mapResponseError reads a non-2xx response and maps it to a domain error.
func mapResponseError(resp *http.Response, service string, c call) error {
	var body *errorBody
	if resp.Body != nil {
		body = parseErrorBody(resp.Body)
	}

	// GraphQL validation failures arrive as 400 with a coded errors array.
	if body != nil && body.code() != "" {
		return mapGraphQLErrors(body.Errors, service, c)
	}

	return mapStatusCode(resp.StatusCode, body, service, c)
}

func mapStatusCode(status int, body *errorBody, service string, c call) error {
	message := defaultMessageForStatus(status, c.name)
	if body != nil && body.message() != "" {
		message = body.message()
	}

	switch status {
	case http.StatusNotFound:
		return notFound(c)

	case http.StatusConflict:
		return domain.NewConflictError(entityOr(c, service), message)

	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.NewValidationError("", message)

	case http.StatusForbidden:
		return domain.NewForbiddenError(c.name, message)

	case http.StatusUnauthorized:
		return domain.NewForbiddenError(c.name, "authentication required")

	case http.StatusTooManyRequests:
		return domain.NewUnavailableError(service, "rate limit exceeded")

	default:
		if status >= http.StatusInternalServerError {
			return domain.NewUnavailableError(service, message)
		}

		return domain.NewValidationError("", message)
	}
}

func defaultMessageForStatus(status int, operation string) string {
	switch status {
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusConflict:
		return "resource conflict"
	case http.StatusBadRequest:
		return "invalid request"
	case http.StatusForbidden:
		return "access denied"
	case http.StatusTooManyRequests:
		return "rate limit exceeded"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return fmt.Sprintf("%s failed with status %d", operation, status)
	}
}

// mapGraphQLErrors maps the first error of a GraphQL response. The rest are
// usually consequences of the first.
func mapGraphQLErrors(errs []graphQLError, service string, c call) error {
	if len(errs) == 0 {
		return nil
	}

	first := errs[0]
	message := first.Message
	if message == "" {
		message = c.name + " failed"
	}
	if len(errs) > 1 {
		message = fmt.Sprintf("%s (and %d more)", message, len(errs)-1)
	}

	switch classify(first) {
	case codeNotFound:
		return notFound(c)
	case codeConflict:
		return domain.NewConflictError(entityOr(c, service), message)
	case codeValidation:
		return domain.NewValidationError("", message)
	case codeForbidden:
		return domain.NewForbiddenError(c.name, message)
	default:
		return domain.NewUnavailableError(service, message)
	}
}

// classify folds a GraphQL error into one of the codeNotFound, codeConflict,
// codeValidation or codeForbidden buckets, or "" when nothing matches.
func classify(e graphQLError) string {
	switch strings.ToUpper(e.Extensions.Code) {
	case codeNotFound:
		return codeNotFound
	case codeConflict:
		return codeConflict
	case codeValidation, codeBadUserInput, codeGraphQLValidation:
		return codeValidation
	case codeForbidden, codeUnauthorized, codeUnauthenticated:
		return codeForbidden
	}

	msg := strings.ToLower(e.Message)
	switch {
	case strings.Contains(msg, "not found"), strings.Contains(msg, "could not find"):
		return codeNotFound
	case strings.Contains(msg, "unique"), strings.Contains(msg, "already exists"):
		return codeConflict
	case strings.Contains(msg, "not allowed"), strings.Contains(msg, "permission"), strings.Contains(msg, "unauthorized"):
		return codeForbidden
	case strings.Contains(msg, "invalid"), strings.Contains(msg, "expected"), strings.Contains(msg, "required"):
		return codeValidation
	}

	return ""
}

func notFound(c call) error {
	return domain.NewNotFoundError(entityOr(c, "resource"), c.id)
}

func entityOr(c call, fallback string) string {
	if c.entity != "" {
		return c.entity
	}

	return fallback
}
