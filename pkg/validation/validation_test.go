package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "checklist/pkg/domain-errors"
)

type sample struct {
	ClientID string `json:"clientId" validate:"required,max=8,tenant"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Name     string `json:"name" validate:"notblank"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  sample
		msg  string
	}{
		{"valid", sample{ClientID: "acme", Name: "Maria"}, ""},
		{"missing client", sample{Name: "Maria"}, "clientId is required"},
		{"client too long", sample{ClientID: "acme-logistics", Name: "Maria"}, "clientId must be at most 8 characters"},
		{"client with path characters", sample{ClientID: "a/b?x=", Name: "Maria"}, "clientId must contain only letters, digits, '-' or '_'"},
		{"client with dash and underscore", sample{ClientID: "ac-m_e", Name: "Maria"}, ""},
		{"bad email", sample{ClientID: "acme", Email: "nope", Name: "Maria"}, "email must be a valid email"},
		{"blank name", sample{ClientID: "acme", Name: "   "}, "name must not be blank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if tt.msg == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.EqualError(t, err, tt.msg)
		})
	}
}
