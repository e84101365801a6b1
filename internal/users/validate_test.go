package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name   string
		user   User
		fields map[string]string
	}{
		{"valid", User{Name: "Ann", Email: "ann@example.com"}, nil},
		{"missing name", User{Email: "ann@example.com"}, map[string]string{"name": "Name is required"}},
		{"blank name", User{Name: "  ", Email: "ann@example.com"}, map[string]string{"name": "Name is required"}},
		{"missing email", User{Name: "Ann"}, map[string]string{"email": "Email is required"}},
		{"no domain dot", User{Name: "Ann", Email: "ann@example"}, map[string]string{"email": "Email is invalid"}},
		{"no at", User{Name: "Ann", Email: "ann.example.com"}, map[string]string{"email": "Email is invalid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var verr ValidationErrors
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, ValidationErrors(tt.fields), verr)
		})
	}
}

func TestUser_ValidatePartial(t *testing.T) {
	assert.NoError(t, User{Name: "Ann"}.ValidatePartial())
	assert.NoError(t, User{Email: "ann@example.com"}.ValidatePartial())
	assert.Error(t, User{}.ValidatePartial())
	assert.Error(t, User{Email: "bad"}.ValidatePartial())
	assert.Error(t, User{Name: " "}.ValidatePartial())
}
