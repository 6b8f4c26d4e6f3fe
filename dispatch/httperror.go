package dispatch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// errorBody is the backend's error envelope. FastAPI-style services return
// either a plain detail string or an array of field validation errors.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type validationError struct {
	Loc []json.RawMessage `json:"loc"`
	Msg string            `json:"msg"`
}

// parseHTTPError extracts a human-readable detail from a non-2xx response.
func parseHTTPError(statusCode int, body []byte) string {
	detail := "request failed"

	if len(body) > 0 {
		var envelope errorBody
		if err := json.Unmarshal(body, &envelope); err == nil {
			switch {
			case len(envelope.Detail) > 0:
				detail = parseDetail(envelope.Detail)
			case envelope.Message != "":
				detail = envelope.Message
			}
		} else {
			var plain string
			if err := json.Unmarshal(body, &plain); err == nil && plain != "" {
				detail = plain
			}
		}
	}

	return fmt.Sprintf("HTTP %d: %s", statusCode, detail)
}

func parseDetail(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	// Validation errors arrive as an array of {loc, msg}.
	var errs []validationError
	if err := json.Unmarshal(raw, &errs); err == nil && len(errs) > 0 {
		parts := make([]string, 0, len(errs))
		for _, e := range errs {
			locs := make([]string, 0, len(e.Loc))
			for _, l := range e.Loc {
				locs = append(locs, strings.Trim(string(l), `"`))
			}
			parts = append(parts, strings.TrimSpace(strings.Join(locs, ".")+" "+e.Msg))
		}
		return strings.Join(parts, ", ")
	}

	return "request failed"
}
