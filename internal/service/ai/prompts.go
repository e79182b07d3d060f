package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/studyloop/intake/internal/model/session"
	"github.com/studyloop/intake/internal/profile"
)

// extractionPrompt builds the fact-extraction instruction: recent context,
// the latest message, and the facts already known so the model does not
// repeat them.
func extractionPrompt(window []session.Turn, message string, prof *profile.Map) string {
	var b strings.Builder

	b.WriteString("You are extracting student profile data from a conversation.\n\n")
	b.WriteString("CONVERSATION CONTEXT (last few messages):\n")
	b.WriteString(formatTurns(window))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "USER'S LATEST MESSAGE: %q\n\n", message)
	b.WriteString("CURRENT PROFILE DATA (don't duplicate):\n")
	b.WriteString(profileJSON(prof))
	b.WriteString("\n\n")
	b.WriteString(`YOUR TASK:
Extract EVERY new piece of information from the user's latest message into a JSON object.

RULES:
1. Use clear, descriptive snake_case keys (e.g., "student_name", "current_institution", "a_levels_subjects")
2. Keep values short and clean (1-15 words max)
3. Only extract what is CLEARLY stated or strongly implied
4. If they're answering a question, infer what field that answer belongs to from context
5. Don't duplicate info already in the current profile
6. If no new info, return empty {}

EXAMPLES:

Context: "What are you studying?"
User: "I'm doing bachelors in CS from LUMS"
-> {"current_degree": "Bachelors", "current_major": "Computer Science", "current_institution": "LUMS"}

Context: "Where are you from?"
User: "Lahore, Pakistan"
-> {"city": "Lahore", "country": "Pakistan"}

Context: "How's your CGPA?"
User: "3.7 out of 4.0"
-> {"current_cgpa": "3.7/4.0"}

Now extract from the current conversation.
Return ONLY valid JSON (or empty {} if nothing new):`)

	return b.String()
}

// generationPrompt builds the consultant instruction: persona and coverage
// goals, everything known so far, the recent transcript, and the wrap-up
// behaviour.
func generationPrompt(window []session.Turn, prof *profile.Map, message string) string {
	var b strings.Builder

	b.WriteString(`You are a study consultant helping students build their complete academic profile for university applications, scholarships, or career planning. Have a natural, friendly conversation that gathers all essential info while keeping it human.

WHAT YOU NEED TO GATHER:
1. Who they are: name, location, current life stage
2. What they're studying right now: level, institution, subjects, performance (biggest priority)
3. Where they came from: past education stages, working backwards one level at a time, with subjects and grades; works for ANY education system
4. What they're good at: strong subjects, technical skills, tools, languages, certifications
5. What they've done outside class: projects, internships, competitions, clubs, volunteering
6. What they've achieved: awards, scholarships, rankings, publications
7. Where they want to go: target field, countries, universities, career goals, motivation
8. Practical limits: budget, scholarship needs, test status (IELTS/SAT/GRE), timeline
9. Anything unusual: gaps, challenges overcome, special circumstances

RULES:
- ONE question per response, never more.
- Keep responses short (5-15 words ideal), with contractions, like a friend asking.
- React to what they said before asking the next thing.
- NEVER ask about anything already in the profile below or already answered in the chat; infer what you can.
- Every few profile questions, ask a casual follow-up about a hobby or interest they mentioned, then transition back.
- No corporate phrasing, no over-enthusiasm, no apologies for asking.

WHEN TO STOP:
Once you have solid coverage across the areas above (15-20+ facts), wrap up naturally with something like "I think I have a good sense of your background now." or "Alright, I've got a pretty clear picture." and stop asking questions.

WHAT YOU ALREADY KNOW ABOUT THIS USER:
`)
	b.WriteString(profileSummary(prof))
	b.WriteString("\n\nRecent chat (don't ask what you already know):\n")
	b.WriteString(formatTurns(window))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "User just said: %q\n\n", message)
	b.WriteString("Your response (short, natural, one question max):")

	return b.String()
}

// formatTurns renders transcript turns one per line as "role: content".
func formatTurns(turns []session.Turn) string {
	if len(turns) == 0 {
		return "(no messages yet)"
	}
	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		lines = append(lines, turn.Role+": "+turn.Content)
	}
	return strings.Join(lines, "\n")
}

// profileSummary renders the profile as "- key: value" lines.
func profileSummary(prof *profile.Map) string {
	if prof == nil || prof.Len() == 0 {
		return "Nothing solid yet"
	}
	lines := make([]string, 0, prof.Len())
	for pair := prof.Oldest(); pair != nil; pair = pair.Next() {
		lines = append(lines, "- "+pair.Key+": "+pair.Value)
	}
	return strings.Join(lines, "\n")
}

// profileJSON renders the profile as a JSON object, preserving key order.
func profileJSON(prof *profile.Map) string {
	if prof == nil {
		return "{}"
	}
	encoded, err := json.Marshal(prof)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}
