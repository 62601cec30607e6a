package validation_test

import (
	"testing"

	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/validation"
	"github.com/stretchr/testify/require"
)

type request struct {
	ThreadID string `validate:"required"`
	Kind     string `validate:"omitempty,oneof=text image"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, validation.Struct(&request{ThreadID: "t1", Kind: "text"}))

	err := validation.Struct(&request{Kind: "video"})
	require.ErrorIs(t, err, errors.ErrInvalidParams)
	require.Contains(t, err.Error(), "ThreadID:required")
	require.Contains(t, err.Error(), "Kind:oneof")
}
