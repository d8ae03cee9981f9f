package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/largefullmoon/backend-book-recommendation/internal/errors"
)

type consentRequest struct {
	ParentName    string `json:"parentName" validate:"required"`
	ParentContact string `json:"parentContact" validate:"required,email"`
	ChildAge      int    `json:"childAge" validate:"required,gte=1,lte=18"`
}

func TestValidatePasses(t *testing.T) {
	v := New()

	err := v.Validate(consentRequest{
		ParentName:    "Jordan",
		ParentContact: "jordan@example.com",
		ChildAge:      8,
	})
	assert.NoError(t, err)
}

func TestValidateReturnsFieldDetails(t *testing.T) {
	v := New()

	err := v.Validate(consentRequest{ParentContact: "not-an-email", ChildAge: 25})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["parentName"])
	assert.Equal(t, "must be a valid email address", details["parentContact"])
	assert.Equal(t, "must be less than or equal to 18", details["childAge"])
}

func TestValidateUsesJSONTagNames(t *testing.T) {
	v := New()

	err := v.Validate(struct {
		Email string `json:"parentEmail,omitempty" validate:"required"`
	}{})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	details := domainErr.Details.(map[string]string)
	assert.Contains(t, details, "parentEmail")
}
