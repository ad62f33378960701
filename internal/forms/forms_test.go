package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginInput(t *testing.T) {
	v := New()

	assert.Nil(t, v.Struct(LoginInput{Username: "amina", Password: "s3cret"}))

	errs := v.Struct(LoginInput{})
	require.Len(t, errs, 2)
	assert.Equal(t, "username", errs[0].Field)
	assert.Equal(t, "password", errs[1].Field)
}

func TestRegisterInput(t *testing.T) {
	v := New()
	valid := RegisterInput{
		Username:        "amina",
		Email:           "amina@example.com",
		Password:        "longenough",
		ConfirmPassword: "longenough",
	}

	tests := []struct {
		name      string
		mutate    func(*RegisterInput)
		wantField string
	}{
		{"valid", func(in *RegisterInput) {}, ""},
		{"short username", func(in *RegisterInput) { in.Username = "ab" }, "username"},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"short password", func(in *RegisterInput) {
			in.Password = "short"
			in.ConfirmPassword = "short"
		}, "password"},
		{"mismatched confirmation", func(in *RegisterInput) { in.ConfirmPassword = "different1" }, "confirm_password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			errs := v.Struct(in)
			if tt.wantField == "" {
				assert.Nil(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.wantField, errs[0].Field)
		})
	}
}

func TestFirstReturnsOneReadableMessage(t *testing.T) {
	v := New()

	assert.Empty(t, v.First(LoginInput{Username: "amina", Password: "x"}))

	msg := v.First(LoginInput{Password: "x"})
	assert.Equal(t, "username is a required field", msg)
}
