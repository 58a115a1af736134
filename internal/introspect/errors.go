package introspect

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoData is returned when a response carries neither errors nor data.
var ErrNoData = errors.New("no data returned from GraphQL introspection")

// HTTPError reports a non-2xx response from the endpoint.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GraphQL introspection failed with HTTP %d: %s (url: %s)", e.StatusCode, e.Reason(), e.URL)
}

// Reason explains the status code in terms of what usually causes it.
func (e *HTTPError) Reason() string {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return "bad request, the GraphQL query may be malformed"
	case http.StatusUnauthorized:
		return "unauthorized, authentication required; check your headers"
	case http.StatusForbidden:
		return "forbidden, access denied; verify your credentials and permissions"
	case http.StatusNotFound:
		return "not found, no GraphQL endpoint at the specified URL"
	case http.StatusInternalServerError:
		return "internal server error, the GraphQL server encountered an error"
	}
	return "HTTP request failed"
}

// IsHTTPError reports whether err is or wraps an HTTPError.
func IsHTTPError(err error) bool {
	var e *HTTPError
	return errors.As(err, &e)
}

// GraphQLErrors collects the `errors` array of a response.
type GraphQLErrors struct {
	Messages []string
}

func (e *GraphQLErrors) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "GraphQL introspection failed with %d error", len(e.Messages))
	if len(e.Messages) != 1 {
		b.WriteString("s")
	}
	b.WriteString(":")
	for i, msg := range e.Messages {
		fmt.Fprintf(&b, "\n%d. %s", i+1, msg)
	}
	return b.String()
}

// IsGraphQLErrors reports whether err is or wraps a GraphQLErrors.
func IsGraphQLErrors(err error) bool {
	var e *GraphQLErrors
	return errors.As(err, &e)
}
