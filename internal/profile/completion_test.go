package profile_test

import (
	"testing"

	"github.com/studyloop/intake/internal/profile"
)

func TestSignalsCompletion(t *testing.T) {
	cases := []struct {
		reply string
		want  bool
	}{
		{"Alright, I think we're good to go!", true},
		{"I THINK I HAVE A GOOD PICTURE NOW.", true},
		{"Nice. Think we have enough to start planning.", true},
		{"I have a pretty complete picture of your background.", true},
		{"Nice! What year are you in?", false},
		{"How'd your A-Levels go?", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := profile.SignalsCompletion(tc.reply); got != tc.want {
			t.Fatalf("SignalsCompletion(%q) = %v, want %v", tc.reply, got, tc.want)
		}
	}
}
