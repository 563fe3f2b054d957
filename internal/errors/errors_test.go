package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsInnermostCode(t *testing.T) {
	base := MissingColumn("OrderID")
	wrapped := Wrap(base, "load sales table")
	twice := fmt.Errorf("run: %w", wrapped)

	assert.Equal(t, CodeMissingColumn, GetCode(wrapped))
	assert.Equal(t, CodeMissingColumn, GetCode(twice))
	assert.True(t, IsAppError(twice))
	assert.Contains(t, wrapped.Error(), `required column "OrderID" not found`)
}

func TestWrap_PlainErrorBecomesInternal(t *testing.T) {
	err := Wrap(fmt.Errorf("boom"), "stage failed")
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"config", ConfigInvalid("bad alpha"), 2},
		{"missing column", MissingColumn("OrderID"), 2},
		{"load", LoadError("open csv", fmt.Errorf("no such file")), 3},
		{"write", WriteError("reports/x.md", fmt.Errorf("read-only")), 4},
		{"plain", fmt.Errorf("unexpected"), 1},
		{"retagged", WithCode(CodeWriteError, fmt.Errorf("disk full")), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
