package repository

import "testing"

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Student@Example.com", "student@example.com"},
		{"  kid@school.org \n", "kid@school.org"},
		{"already@lower.io", "already@lower.io"},
	}

	for _, tc := range tests {
		if got := normalizeEmail(tc.in); got != tc.want {
			t.Errorf("normalizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
