package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
)

// ErrSessionExpired is wrapped by the RequestError returned when a 401
// could not be recovered by refreshing the access token.
var ErrSessionExpired = autherrors.ErrSessionExpired

// errNotSent marks failures that happened before a request left the client,
// such as an unreadable token store or a body that would not encode.
var errNotSent = errors.New("request not sent")

const (
	sessionExpiredMessage = "Session expired. Please login again."
	defaultErrorMessage   = "Request failed"
	networkErrorMessage   = "Network error occurred"
)

// Kind classifies a RequestError for presentation
type Kind int

const (
	KindUnexpected  Kind = iota // includes local failures before sending
	KindNetwork          // no HTTP response, StatusCode is 0
	KindAuthExpired      // refresh failed, credentials were cleared
	KindValidation       // 4xx, usually with field errors in the body
	KindServer           // 5xx
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuthExpired:
		return "auth_expired"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "unexpected"
	}
}

// RequestError is returned for every failed call: non-2xx responses,
// network failures and expired sessions.
type RequestError struct {
	Message    string
	StatusCode int
	Body       map[string]any  // the parsed body when it was a JSON object
	Raw        json.RawMessage // the response body as received
	Err        error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func (e *RequestError) Kind() Kind {
	switch {
	case errors.Is(e.Err, ErrSessionExpired):
		return KindAuthExpired
	case errors.Is(e.Err, errNotSent):
		return KindUnexpected
	case e.StatusCode == 0:
		return KindNetwork
	case e.StatusCode >= http.StatusInternalServerError:
		return KindServer
	case e.StatusCode >= http.StatusBadRequest:
		return KindValidation
	default:
		return KindUnexpected
	}
}

// Detail returns the body's "detail" string, or "" if absent
func (e *RequestError) Detail() string {
	if s, ok := e.Body["detail"].(string); ok {
		return s
	}
	return ""
}

// FieldMessage is one entry of a field-keyed error body
type FieldMessage struct {
	Field   string
	Message string
}

// FieldErrors returns the body's entries in the order the server sent
// them. Array values contribute their first element.
func (e *RequestError) FieldErrors() []FieldMessage {
	return orderedFieldMessages(e.Raw)
}

// FirstFieldError returns the first entry of FieldErrors
func (e *RequestError) FirstFieldError() (FieldMessage, bool) {
	fields := e.FieldErrors()
	if len(fields) == 0 {
		return FieldMessage{}, false
	}
	return fields[0], true
}

// AsRequestError unwraps err to a *RequestError
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

func newResponseError(status int, raw []byte) *RequestError {
	reqErr := &RequestError{
		StatusCode: status,
		Raw:        json.RawMessage(raw),
		Message:    defaultErrorMessage,
		Err:        fmt.Errorf("unexpected status %d", status),
	}
	var body map[string]any
	if len(raw) > 0 && json.Unmarshal(raw, &body) == nil {
		reqErr.Body = body
	}
	if s, ok := body["error"].(string); ok && s != "" {
		reqErr.Message = s
	} else if s, ok := body["detail"].(string); ok && s != "" {
		reqErr.Message = s
	}
	return reqErr
}

func newNetworkError(err error) *RequestError {
	msg := networkErrorMessage
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &RequestError{Message: msg, Err: err}
}

func newLocalError(err error) *RequestError {
	return &RequestError{Message: err.Error(), Err: autherrors.Join(errNotSent, err)}
}

func newSessionExpiredError(cause error) *RequestError {
	return &RequestError{
		Message:    sessionExpiredMessage,
		StatusCode: http.StatusUnauthorized,
		Err:        autherrors.Join(ErrSessionExpired, cause),
	}
}

// orderedFieldMessages walks a JSON object with a streaming decoder so the
// server's key order survives; decoding into a map would lose it.
func orderedFieldMessages(raw []byte) []FieldMessage {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}

	var fields []FieldMessage
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fields
		}
		key, ok := tok.(string)
		if !ok {
			return fields
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fields
		}
		fields = append(fields, FieldMessage{Field: key, Message: firstMessage(value)})
	}
	return fields
}

func firstMessage(value json.RawMessage) string {
	var s string
	if json.Unmarshal(value, &s) == nil {
		return s
	}
	var list []json.RawMessage
	if json.Unmarshal(value, &list) == nil {
		if len(list) == 0 {
			return ""
		}
		return firstMessage(list[0])
	}
	return strings.TrimSpace(string(value))
}
