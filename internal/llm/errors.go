package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// IsPermanent reports whether retrying err with the same inputs cannot succeed:
// cancellation, or a provider rejecting the request itself (bad request, auth,
// unknown model). Rate limits, timeouts and server errors are not permanent.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}

	var claudeErr *anthropic.APIError
	if errors.As(err, &claudeErr) {
		return claudeErr.IsInvalidRequestErr() || claudeErr.IsAuthenticationErr() ||
			claudeErr.IsPermissionErr() || claudeErr.IsNotFoundErr() || claudeErr.IsTooLargeErr()
	}

	// Gemini over gRPC.
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.InvalidArgument, codes.Unauthenticated, codes.PermissionDenied, codes.NotFound:
			return true
		}
	}

	return permanentStatus(httpStatus(err))
}

func httpStatus(err error) int {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	var claudeReqErr *anthropic.RequestError
	var googleErr *googleapi.Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		return reqErr.HTTPStatusCode
	case errors.As(err, &claudeReqErr):
		return claudeReqErr.StatusCode
	case errors.As(err, &googleErr):
		return googleErr.Code
	}
	return 0
}

func permanentStatus(code int) bool {
	switch code {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}
