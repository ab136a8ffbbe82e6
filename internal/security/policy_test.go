package security_test

import (
	"testing"

	"github.com/rmacedo/custeio/internal/security"
)

func TestIsAdmin(t *testing.T) {
	cases := []struct {
		role string
		want bool
	}{
		{role: "admin", want: true},
		{role: "user", want: false},
		{role: "", want: false},
		{role: "Admin", want: false},
		{role: "administrator", want: false},
	}

	for _, tc := range cases {
		if got := security.IsAdmin(tc.role); got != tc.want {
			t.Fatalf("IsAdmin(%q): expected %v, got %v", tc.role, tc.want, got)
		}
	}
}
