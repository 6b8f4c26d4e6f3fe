package types

import (
	"errors"
	"strings"
	"testing"
)

func TestIsTransient(t *testing.T) {
	transient := []ErrorType{ErrorTypeTimeout, ErrorTypeNetwork}
	for _, tt := range transient {
		if !tt.IsTransient() {
			t.Errorf("%s should be transient", tt)
		}
	}

	terminal := []ErrorType{
		ErrorTypeNetworkDisconnected,
		ErrorTypeDomain,
		ErrorTypeHTTP,
		ErrorTypeConfig,
		ErrorTypeMaxRetriesExceeded,
		ErrorTypeLoginFailed,
	}
	for _, tt := range terminal {
		if tt.IsTransient() {
			t.Errorf("%s should be terminal", tt)
		}
	}
}

func TestRequestErrorMessage(t *testing.T) {
	err := NewRequestError(ErrorTypeTimeout, "request timed out")
	if !strings.Contains(err.Error(), "TIMEOUT_ERROR") || !strings.Contains(err.Error(), "request timed out") {
		t.Errorf("unexpected message %q", err.Error())
	}

	withStatus := &RequestError{Type: ErrorTypeHTTP, Message: "bad request", StatusCode: 400}
	if !strings.Contains(withStatus.Error(), "HTTP 400") {
		t.Errorf("status code missing from %q", withStatus.Error())
	}
}

func TestRequestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapRequestError(ErrorTypeNetwork, "network request failed", cause)
	if !errors.Is(err, cause) {
		t.Error("expected the cause reachable via errors.Is")
	}
}

func TestOutcomeHelpers(t *testing.T) {
	ok := SuccessOutcome(200, []byte(`{"id":9}`))
	if !ok.Success || ok.StatusCode != 200 {
		t.Errorf("unexpected success outcome %+v", ok)
	}
	var decoded struct {
		ID int `json:"id"`
	}
	if err := ok.Decode(&decoded); err != nil || decoded.ID != 9 {
		t.Errorf("Decode = (%+v, %v)", decoded, err)
	}

	failed := FailureOutcome(&RequestError{Type: ErrorTypeHTTP, Message: "boom", StatusCode: 500})
	if failed.Success {
		t.Error("failure outcome marked successful")
	}
	if failed.StatusCode != 500 {
		t.Errorf("status code not propagated, got %d", failed.StatusCode)
	}
	if failed.Error == nil || failed.Error.Type != ErrorTypeHTTP {
		t.Errorf("classified error not attached: %+v", failed.Error)
	}
}
