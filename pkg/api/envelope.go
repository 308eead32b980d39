package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
)

// Envelope is the wrapper every API response arrives in.
type Envelope struct {
	RequestTime  int64           `json:"request_time"`
	ResponseCode int             `json:"response_code"`
	Success      bool            `json:"success"`
	TotalData    *int            `json:"total_data,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`
	Title        string          `json:"title,omitempty"`
	Message      string          `json:"message,omitempty"`
}

var successCodes = []int{http.StatusOK, http.StatusCreated}

// OK reports whether the response code is 200 or 201. The success flag is
// not consulted.
func (e *Envelope) OK() bool {
	return slices.Contains(successCodes, e.ResponseCode)
}

// Err returns nil for a successful envelope and a *ResponseError otherwise.
func (e *Envelope) Err(fallback string) error {
	if e.OK() {
		return nil
	}
	msg := e.Message
	if msg == "" {
		msg = fallback
	}
	return &ResponseError{Code: e.ResponseCode, Title: e.Title, Message: msg}
}

// ResponseError is a non-success envelope.
type ResponseError struct {
	Code    int
	Title   string
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}
