package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBase64(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		wantErr bool
	}{
		{
			name:    "ValidBase64",
			value:   "aGVsbG8gd29ybGQ=",
			wantErr: false,
		},
		{
			name:    "ValidBase64Key",
			value:   "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=",
			wantErr: false,
		},
		{
			name:    "EmptyStringAllowed",
			value:   "",
			wantErr: false,
		},
		{
			name:    "InvalidCharacters",
			value:   "not base64!!",
			wantErr: true,
		},
		{
			name:    "BadPadding",
			value:   "aGVsbG8",
			wantErr: true,
		},
		{
			name:    "NotAString",
			value:   42,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Base64.Validate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
