package dispatch

import (
	"testing"
)

func TestParseHTTPError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{
			name:   "detail string",
			status: 404,
			body:   `{"detail":"用户不存在"}`,
			want:   "HTTP 404: 用户不存在",
		},
		{
			name:   "validation array",
			status: 422,
			body:   `{"detail":[{"loc":["body","email"],"msg":"value is not a valid email address"}]}`,
			want:   "HTTP 422: body.email value is not a valid email address",
		},
		{
			name:   "message field",
			status: 500,
			body:   `{"message":"internal error"}`,
			want:   "HTTP 500: internal error",
		},
		{
			name:   "plain string body",
			status: 502,
			body:   `"bad gateway"`,
			want:   "HTTP 502: bad gateway",
		},
		{
			name:   "empty body",
			status: 503,
			body:   "",
			want:   "HTTP 503: request failed",
		},
		{
			name:   "unparseable body",
			status: 500,
			body:   "<html>oops</html>",
			want:   "HTTP 500: request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseHTTPError(tt.status, []byte(tt.body))
			if got != tt.want {
				t.Errorf("parseHTTPError(%d, %q) = %q, want %q", tt.status, tt.body, got, tt.want)
			}
		})
	}
}
