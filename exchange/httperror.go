package exchange

import "fmt"

//
// HTTPError represents an error due to a non-2xx response from an API endpoint that carried no
// venue error payload. When dealing with cryptocurrency exchange APIs, such a response almost
// always means that something critically wrong has occurred.
//
type HTTPError struct {
	statusCode int
	body       string
}

func NewHTTPError(statusCode int, body []byte) *HTTPError {
	const maxBody = 256

	if len(body) > maxBody {
		body = body[:maxBody]
	}

	return &HTTPError{
		statusCode: statusCode,
		body:       string(body),
	}
}

func (o *HTTPError) StatusCode() int {
	return o.statusCode
}

func (o *HTTPError) Error() string {
	if o.body == "" {
		return fmt.Sprintf("server responded with a %d status code", o.statusCode)
	}

	return fmt.Sprintf("server responded with a %d status code (body: %s)", o.statusCode, o.body)
}
