package validate_test

import (
	"testing"

	"github.com/fornello/pizzeria/pkg/validate"
)

type registerInput struct {
	Name     string  `json:"name"     validate:"required,min=2,max=100"`
	Email    string  `json:"email"    validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Price    float64 `json:"price"    validate:"gt=0"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(registerInput{
		Name:     "Mario Rossi",
		Email:    "mario@example.com",
		Password: "secret123",
		Price:    8.5,
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(registerInput{Price: 1})
	if !validate.HasErrors(errs) {
		t.Fatal("expected required errors")
	}
	for _, field := range []string{"name", "email", "password"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected %s to be required", field)
		}
	}
}

func TestEmailRule(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
	}
	errs := validate.Struct(in{Email: "not-an-email"})
	if _, ok := errs["email"]; !ok {
		t.Error("expected email validation error")
	}
	errs = validate.Struct(in{Email: "valid@example.com"})
	if validate.HasErrors(errs) {
		t.Errorf("expected valid email to pass, got: %v", errs)
	}
}

func TestMinAppliesToLengthAndValue(t *testing.T) {
	type in struct {
		Password string `json:"password" validate:"min=6"`
		Quantity int    `json:"quantity" validate:"min=1"`
	}
	errs := validate.Struct(in{Password: "abc", Quantity: 0})
	if _, ok := errs["password"]; !ok {
		t.Error("expected short password to fail")
	}
	if _, ok := errs["quantity"]; !ok {
		t.Error("expected zero quantity to fail")
	}

	errs = validate.Struct(in{Password: "abcdef", Quantity: 1})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestGtRule(t *testing.T) {
	type in struct {
		Price float64 `json:"price" validate:"gt=0"`
	}
	if errs := validate.Struct(in{Price: 0}); !validate.HasErrors(errs) {
		t.Error("expected zero price to fail gt=0")
	}
	if errs := validate.Struct(in{Price: -1}); !validate.HasErrors(errs) {
		t.Error("expected negative price to fail gt=0")
	}
	if errs := validate.Struct(in{Price: 0.01}); validate.HasErrors(errs) {
		t.Error("expected positive price to pass gt=0")
	}
}

func TestRequiredSlice(t *testing.T) {
	type in struct {
		Items []string `json:"items" validate:"required"`
	}
	if errs := validate.Struct(in{}); !validate.HasErrors(errs) {
		t.Error("expected empty slice to fail required")
	}
	if errs := validate.Struct(in{Items: []string{"a"}}); validate.HasErrors(errs) {
		t.Error("expected non-empty slice to pass")
	}
}

func TestFieldNameFromJSONTag(t *testing.T) {
	type in struct {
		BasePrice float64 `json:"basePrice" validate:"gt=0"`
	}
	errs := validate.Struct(in{})
	if _, ok := errs["basePrice"]; !ok {
		t.Errorf("expected error keyed by json tag, got: %v", errs)
	}
}

func TestPointerInput(t *testing.T) {
	errs := validate.Struct(&registerInput{
		Name:     "Mario",
		Email:    "mario@example.com",
		Password: "secret123",
		Price:    1,
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected pointer input to validate, got: %v", errs)
	}
}
