package story

import (
	"fmt"
	"strings"

	"github.com/portfola/storywriter/internal/core/domain"
	"github.com/portfola/storywriter/internal/infra/generation"
)

// interviewQuestions is the fixed question script for the child interview.
var interviewQuestions = []string{
	"Who is the hero of your story?",
	"Where does the story take place?",
	"What exciting thing happens to the hero?",
	"Who helps the hero along the way?",
	"How should the story end?",
}

// QuestionAt returns the interview question at index i.
func QuestionAt(i int) (string, bool) {
	if i < 0 || i >= len(interviewQuestions) {
		return "", false
	}
	return interviewQuestions[i], true
}

// QuestionCount returns the number of scripted interview questions.
func QuestionCount() int {
	return len(interviewQuestions)
}

func ageGuidance(age int) string {
	switch {
	case age <= 5:
		return "Use very simple words and short sentences. Keep the story gentle and cheerful."
	case age <= 8:
		return "Use simple, playful language. A little adventure and humor are welcome."
	default:
		return "Use rich but age-appropriate language with an exciting plot and a satisfying ending."
	}
}

// StoryPrompt builds the generation prompt for a topic-based story.
func StoryPrompt(childName string, age int, topic string) string {
	var b strings.Builder
	b.WriteString("Write a short children's story for ")
	b.WriteString(childName)
	fmt.Fprintf(&b, ", who is %d years old. ", age)
	b.WriteString("The story is about: ")
	b.WriteString(strings.TrimSpace(topic))
	b.WriteString(".\n")
	b.WriteString(ageGuidance(age))
	b.WriteString("\nThe story must be kind, safe and end happily. Begin the story now:\n")
	return b.String()
}

// ContinuationPrompt builds the generation prompt from an interview session.
// Answered turns are embedded as "Child:" lines; the resilient client treats
// a continuation prompt without any such line as pointless and answers it
// locally with a fallback.
func ContinuationPrompt(s *domain.InterviewSession) string {
	var b strings.Builder
	b.WriteString(generation.InterviewContinuationMarker)
	fmt.Fprintf(&b, ", write a short story for %s, who is %d years old.\n", s.ChildName, s.Age)

	for _, turn := range s.AnsweredTurns() {
		b.WriteString("Question: ")
		b.WriteString(turn.Question)
		b.WriteString("\n")
		b.WriteString(generation.TurnPrefix)
		b.WriteString(" ")
		b.WriteString(turn.Answer)
		b.WriteString("\n")
	}

	b.WriteString(ageGuidance(s.Age))
	b.WriteString("\nWeave every answer into one kind, happy story. Begin the story now:\n")
	return b.String()
}
