package netx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHost(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"[2001:db8::1]", "2001:db8::1"},
		{"bufconn", "bufconn"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Host(tt.in), tt.in)
	}
}
