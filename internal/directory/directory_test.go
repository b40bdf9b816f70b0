package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatientFullName(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"Ada", "Byron", "Ada Byron"},
		{"Ada", "", "Ada"},
		{"", "Byron", "Byron"},
		{"", "", ""},
	}

	for _, tt := range tests {
		p := Patient{FirstName: tt.first, LastName: tt.last}
		assert.Equal(t, tt.want, p.FullName())
	}
}
