package apperrors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "message only",
			err:      &Error{Kind: KindConfig, Message: "unsupported shell: tcsh"},
			expected: "unsupported shell: tcsh",
		},
		{
			name:     "with op",
			err:      Configf("load history", "unsupported shell: %s", "tcsh"),
			expected: "load history: unsupported shell: tcsh",
		},
		{
			name:     "with cause",
			err:      Terminal("render", "failed to write frame", io.ErrClosedPipe),
			expected: "render: failed to write frame: io: read/write on closed pipe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestKindOf_ThroughWrapping(t *testing.T) {
	base := Terminal("read", "failed to read input event", io.EOF)
	wrapped := fmt.Errorf("picker session failed: %w", base)

	assert.Equal(t, KindTerminal, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindTerminal))
	assert.False(t, IsKind(wrapped, KindConfig))
	assert.True(t, errors.Is(wrapped, io.EOF))
}

func TestKindOf_PlainErrors(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.False(t, IsKind(nil, KindConfig))
}
