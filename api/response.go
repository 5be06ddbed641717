package api

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
)

// Response is the outcome of a successful request. A 204 carries no
// body; a JSON response can be decoded; anything else is raw text.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	json       bool
}

// Empty reports whether the response carried no body (204 No Content).
func (r *Response) Empty() bool {
	return len(r.Body) == 0
}

// IsJSON reports whether the server declared a JSON content type.
func (r *Response) IsJSON() bool {
	return r.json
}

// Decode unmarshals the JSON body into v. Decoding an empty response
// is a no-op so DELETE-style call sites need no special casing.
func (r *Response) Decode(v interface{}) error {
	if r.Empty() {
		return nil
	}
	if !r.json {
		return errors.New("[Response.Decode] response is not JSON")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Wrap(err, "[Response.Decode] unmarshal")
	}
	return nil
}

// Text returns the raw body, unparsed.
func (r *Response) Text() string {
	return string(r.Body)
}
