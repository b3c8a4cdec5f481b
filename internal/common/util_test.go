package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	assert.Equal(t, []byte{0, 0, 0, 0, 0}, buf)
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

type messageErr struct{ msg string }

func (e *messageErr) Error() string       { return "api: " + e.msg }
func (e *messageErr) UserMessage() string { return e.msg }

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error uses fallback", err: errors.New("dial tcp: refused"), want: "Login failed"},
		{name: "carrier", err: &messageErr{msg: "Invalid credentials"}, want: "Invalid credentials"},
		{name: "wrapped carrier", err: fmt.Errorf("login: %w", &messageErr{msg: "User not found"}), want: "User not found"},
		{name: "empty message falls back", err: &messageErr{}, want: "Login failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err, "Login failed"))
		})
	}
}
