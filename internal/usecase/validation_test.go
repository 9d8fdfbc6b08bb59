package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

func TestValidateInput(t *testing.T) {
	assert.Empty(t, usecase.ValidateInput(validInput()))

	in := validInput()
	in.Name = ""
	in.Email = "nope"
	in.Notes = []string{"ok", string(make([]byte, 2001))}

	errs := usecase.ValidateInput(in)
	require.Len(t, errs, 3)
	assert.Equal(t, "name", errs[0].Field)
	assert.Equal(t, "is required", errs[0].Message)
	assert.Equal(t, "email", errs[1].Field)
	assert.Equal(t, "is invalid", errs[1].Message)
	assert.Equal(t, "notes[1]", errs[2].Field)
}

func TestValidateInput_Call(t *testing.T) {
	errs := usecase.ValidateInput(usecase.LogCallInput{LeadID: "l", EmployeeID: "e", Status: "completed", Duration: -1})
	require.Len(t, errs, 1)
	assert.Equal(t, "duration", errs[0].Field)
	assert.Equal(t, "must be >= 0", errs[0].Message)
}
