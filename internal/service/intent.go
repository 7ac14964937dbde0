package service

import (
	"regexp"
	"strings"
)

// Query intents recognized by the tutor pipeline. IntentPractice is a hard
// stop: the tutor refuses to generate practice questions and points the user
// at the quiz feature instead (product policy, not a technical limit).
const (
	IntentPractice    = "practice"
	IntentFactual     = "factual"
	IntentProcedural  = "procedural"
	IntentComparative = "comparative"
	IntentConcise     = "concise"
	IntentDetailed    = "detailed"
	IntentRemedial    = "remedial"
	IntentAdvanced    = "advanced"
	IntentVisual      = "visual"
	IntentGeneral     = "general"
)

// PracticeRefusalMessage is returned verbatim for practice-intent queries.
const PracticeRefusalMessage = "I can't generate practice questions or MCQs here. " +
	"Please head over to the Quizzes section, which has full practice tests with " +
	"timed attempts and detailed results."

var practicePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bgenerate\b.*\b(mcq|mcqs|question|questions|quiz)\b`),
	regexp.MustCompile(`\b(make|create|write|give)\b.*\b(mcq|mcqs|quiz|test)\b`),
	regexp.MustCompile(`\b\d+\s+(mcq|mcqs|questions)\b`),
	regexp.MustCompile(`\bpractice (questions|test|mcqs)\b`),
	regexp.MustCompile(`\bquiz me\b`),
	regexp.MustCompile(`\bmock test\b`),
}

// ClassifyIntent buckets a raw query by keyword/pattern matching. The order of
// checks matters: practice detection runs first because it blocks the request
// outright.
func ClassifyIntent(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))

	for _, p := range practicePatterns {
		if p.MatchString(q) {
			return IntentPractice
		}
	}

	switch {
	case containsAny(q, "in short", "briefly", "one line", "summarize", "summary", "quick answer"):
		return IntentConcise
	case containsAny(q, "in detail", "detailed", "elaborate", "explain fully", "comprehensive"):
		return IntentDetailed
	case containsAny(q, "difference between", "compare", "versus", " vs ", "distinguish"):
		return IntentComparative
	case containsAny(q, "table", "diagram", "chart", "flowchart", "tabular"):
		return IntentVisual
	case containsAny(q, "how to", "how do i", "steps", "procedure", "method of", "process of"):
		return IntentProcedural
	case containsAny(q, "i don't understand", "i am confused", "confused", "again", "still unclear", "basics of"):
		return IntentRemedial
	case containsAny(q, "advanced", "beyond the syllabus", "in depth mechanism", "derivation"):
		return IntentAdvanced
	case containsAny(q, "what is", "define", "definition", "who", "when", "where", "formula"):
		return IntentFactual
	default:
		return IntentGeneral
	}
}

// FormatInstruction maps a classified intent to the generation style appended
// to the model prompt.
func FormatInstruction(intent string) string {
	switch intent {
	case IntentConcise:
		return "Answer in 2-3 sentences. No preamble."
	case IntentDetailed:
		return "Give a thorough explanation with headings and examples."
	case IntentComparative:
		return "Structure the answer as a point-by-point comparison."
	case IntentVisual:
		return "Present the core of the answer as a markdown table."
	case IntentProcedural:
		return "Answer as a numbered list of steps."
	case IntentRemedial:
		return "Explain from first principles in simple language, assuming the concept did not land the first time."
	case IntentAdvanced:
		return "Assume a strong student; include mechanism-level detail beyond the syllabus summary."
	case IntentFactual:
		return "Lead with the direct answer, then one short supporting paragraph."
	default:
		return "Answer clearly at exam-preparation level."
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
