package profile

import "strings"

// wrapUpSignals are the phrases the consultant uses when it has gathered
// enough. Matching is plain substring containment, not semantic.
var wrapUpSignals = []string{
	"i think i have a good picture now",
	"i think i have a good sense",
	"i feel like i understand you well",
	"i've got a solid sense of where you're at",
	"ready to talk about a plan",
	"ready to talk about next steps",
	"think we have enough to start",
	"got a good understanding now",
	"i think that's all i need",
	"we've covered the main things",
	"ready to move forward",
	"have a good sense of your background",
	"ready to discuss",
	"i think we're good to go",
	"i have a pretty complete picture",
}

// SignalsCompletion reports whether an assistant reply contains any
// wrap-up signal phrase, case-insensitively.
func SignalsCompletion(reply string) bool {
	lowered := strings.ToLower(reply)
	for _, phrase := range wrapUpSignals {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
