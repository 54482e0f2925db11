package knowledge

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("add: %w", &ValidationError{Field: "tag", Reason: "is required"})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "add: validation failed: tag is required", err.Error())

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "tag", ve.Field)
}

func TestStorageError(t *testing.T) {
	cause := errors.New("disk I/O error")

	read := readError("select", cause)
	write := writeError("insert", cause)

	assert.ErrorIs(t, read, cause)
	assert.ErrorIs(t, write, cause)
	assert.NotErrorIs(t, read, ErrValidation)

	var se *StorageError
	require.ErrorAs(t, read, &se)
	assert.True(t, se.Retryable())
	assert.Equal(t, "storage select failed (read): disk I/O error", se.Error())

	require.ErrorAs(t, write, &se)
	assert.False(t, se.Retryable())
	assert.Equal(t, PhaseWrite, se.Phase)
}

func TestAddRequest_Validate(t *testing.T) {
	s := func(v string) *string { return &v }

	tests := []struct {
		name      string
		req       AddRequest
		wantField string
	}{
		{name: "both present", req: AddRequest{Tag: s("t"), Contents: s("c")}},
		{name: "empty strings", req: AddRequest{Tag: s(""), Contents: s("")}},
		{name: "nil tag", req: AddRequest{Contents: s("c")}, wantField: "tag"},
		{name: "nil contents", req: AddRequest{Tag: s("t")}, wantField: "contents"},
		{name: "both nil", req: AddRequest{}, wantField: "tag"},
		{name: "invalid utf8 contents", req: AddRequest{Tag: s("t"), Contents: s("\xff\xfe")}, wantField: "contents"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "success", resultLabel(nil))
	assert.Equal(t, "validation_error", resultLabel(&ValidationError{Field: "f", Reason: "r"}))
	assert.Equal(t, "storage_error", resultLabel(readError("select", errors.New("x"))))
	assert.Equal(t, "error", resultLabel(ErrClosed))
}
