package common

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	err := Validate(sampleInput{})
	require.Error(t, err)

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	require.Equal(t, "VALIDATION_ERROR", appErr.Code)
	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	require.Equal(t, "required", details["name"])
	require.Equal(t, "gt=0", details["quantity"])
}

func TestValidatePasses(t *testing.T) {
	require.NoError(t, Validate(sampleInput{Name: "mug", Quantity: 1}))
}
