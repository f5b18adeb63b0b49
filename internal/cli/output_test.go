package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError(t *testing.T) {
	err := NewExitError(ExitFailure, "out of sync")
	assert.Equal(t, "out of sync", err.Error())
	assert.Equal(t, ExitFailure, GetExitCode(err))

	cause := errors.New("connection refused")
	wrapped := WrapExitError(ExitCommandError, "failed to open vault", cause)
	assert.Equal(t, "failed to open vault: connection refused", wrapped.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.ErrorIs(t, wrapped, cause)
}

func TestGetExitCode_PlainError(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
}

func TestGetExitCode_WrappedExitError(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "bad flag"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"yes", "yes\n", false},
		{"y", "y\n", false},
		{"no", "no\n", true},
		{"n", "n\n", true},
		{"retries then yes", "maybe\nok\nyes\n", false},
		{"eof", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := confirm(strings.NewReader(tt.input), &out)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ExitFailure, GetExitCode(err))
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, out.String(), "Confirm (yes/no)?")
		})
	}
}

func TestConfirm_RepromptsOnGarbage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, confirm(strings.NewReader("what\nyes\n"), &out))
	assert.Equal(t, 2, strings.Count(out.String(), "Confirm (yes/no)?"))
}
