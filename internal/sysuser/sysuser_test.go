package sysuser

import "testing"

func TestContainsUser(t *testing.T) {
	t.Parallel()
	listing := []byte("_amavisd\n_analyticsd\nalice\nbob \n  daemon\nroot\n")

	tests := []struct {
		username string
		want     bool
	}{
		{username: "alice", want: true},
		{username: "bob", want: true}, // trailing space in listing
		{username: "root", want: true},
		{username: "ali", want: false},
		{username: "alice2", want: false},
		{username: "", want: false},
	}
	for _, tt := range tests {
		if got := containsUser(listing, tt.username); got != tt.want {
			t.Fatalf("containsUser(%q) = %v, want %v", tt.username, got, tt.want)
		}
	}
}
