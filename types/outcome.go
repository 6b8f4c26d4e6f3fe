package types

import (
	"encoding/json"
)

// RequestOutcome is the only value the dispatcher returns to callers. Raw
// transport errors never escape; a failed outcome carries a classified
// RequestError instead.
type RequestOutcome struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	StatusCode int             `json:"statusCode,omitempty"`
	Error      *RequestError   `json:"error,omitempty"`
}

// SuccessOutcome builds a successful outcome from a response body.
func SuccessOutcome(statusCode int, data []byte) RequestOutcome {
	return RequestOutcome{
		Success:    true,
		Data:       json.RawMessage(data),
		StatusCode: statusCode,
	}
}

// FailureOutcome builds a failed outcome from a classified error.
func FailureOutcome(err *RequestError) RequestOutcome {
	return RequestOutcome{
		Success:    false,
		StatusCode: err.StatusCode,
		Error:      err,
	}
}

// Decode unmarshals the outcome's data into v.
func (o RequestOutcome) Decode(v interface{}) error {
	return json.Unmarshal(o.Data, v)
}
