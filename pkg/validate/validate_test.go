package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradebridge/tradebridge/pkg/validate"
)

type signupInput struct {
	Name     string `json:"name"     validate:"notblank,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=admin wholesaler retailer"`
	Website  string `json:"website"  validate:"omitempty,url"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(signupInput{
		Name:     "John Doe",
		Email:    "john@example.com",
		Password: "secret123",
		Role:     "wholesaler",
	})
	assert.False(t, validate.HasErrors(errs), "%v", errs)
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(signupInput{})

	assert.True(t, validate.HasErrors(errs))
	assert.Equal(t, "The name field is required.", errs["name"])
	assert.Equal(t, "The email field is required.", errs["email"])
	assert.Contains(t, errs, "password")
	assert.NotContains(t, errs, "role")
}

func TestBlankNameFails(t *testing.T) {
	errs := validate.Struct(signupInput{Name: "   ", Email: "a@b.co", Password: "secret123"})
	assert.Contains(t, errs, "name")
}

func TestEmailRule(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
	}
	errs := validate.Struct(in{Email: "not-an-email"})
	assert.Equal(t, "The email must be a valid email address.", errs["email"])

	errs = validate.Struct(in{Email: "valid@example.com"})
	assert.False(t, validate.HasErrors(errs))
}

func TestNumericBounds(t *testing.T) {
	type in struct {
		Price    float64 `json:"price"    validate:"gt=0"`
		Quantity int     `json:"quantity" validate:"gte=1"`
	}
	errs := validate.Struct(in{Price: 0, Quantity: 0})
	assert.Equal(t, "The price must be greater than 0.", errs["price"])
	assert.Equal(t, "The quantity must be greater than or equal to 1.", errs["quantity"])

	assert.False(t, validate.HasErrors(validate.Struct(in{Price: 9.5, Quantity: 2})))
}

func TestOneOfRule(t *testing.T) {
	errs := validate.Struct(signupInput{Name: "x", Email: "a@b.co", Password: "secret123", Role: "superadmin"})
	assert.Equal(t, "The selected role is invalid.", errs["role"])
}

func TestOmitEmptySkipsRules(t *testing.T) {
	errs := validate.Struct(signupInput{Name: "x", Email: "a@b.co", Password: "secret123", Website: ""})
	assert.False(t, validate.HasErrors(errs))

	errs = validate.Struct(signupInput{Name: "x", Email: "a@b.co", Password: "secret123", Website: "not-a-url"})
	assert.Contains(t, errs, "website")
}

func TestStringLength(t *testing.T) {
	type in struct {
		Password string `json:"password" validate:"required,min=6"`
	}
	errs := validate.Struct(in{Password: "abc"})
	assert.Equal(t, "The password must be at least 6 characters.", errs["password"])
}

func TestNonStructIsValid(t *testing.T) {
	assert.False(t, validate.HasErrors(validate.Struct(42)))
}
