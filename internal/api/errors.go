package api

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-resty/resty/v2"
)

type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Message)
}

// Check turns a non-2xx response into an *HTTPError.
func Check(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	body := resp.Body()
	if len(body) == 0 && resp.RawBody() != nil {
		body, _ = io.ReadAll(io.LimitReader(resp.RawBody(), 64<<10))
	}
	return &HTTPError{StatusCode: resp.StatusCode(), Message: message(body, resp.Status())}
}

func message(body []byte, status string) string {
	var payload struct {
		Detail  any    `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		switch d := payload.Detail.(type) {
		case string:
			if d != "" {
				return d
			}
		case nil:
		default:
			if b, err := json.Marshal(d); err == nil {
				return string(b)
			}
		}
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return status
}
