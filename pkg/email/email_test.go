package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{name: "dotted local part", email: "jane.doe@example.com", want: "Jane Doe"},
		{name: "single word", email: "jane@example.com", want: "Jane"},
		{name: "underscore and hyphen", email: "jane_van-dam@example.com", want: "Jane Van Dam"},
		{name: "plus tag", email: "jane+reviews@example.com", want: "Jane Reviews"},
		{name: "no at sign", email: "jane.doe", want: "Jane Doe"},
		{name: "empty local part", email: "@example.com", want: "Reviewer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveDisplayName(tt.email))
		})
	}
}
