package domain

import (
	"time"
)

// Turn is one question/answer exchange in an interview.
type Turn struct {
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	AskedAt    time.Time `json:"asked_at"`
	AnsweredAt time.Time `json:"answered_at"`
}

// InterviewSession holds the conversation state for one child interview.
// Sessions live in Redis with a TTL; they are never persisted long-term.
type InterviewSession struct {
	ID        string    `json:"id"`
	ChildName string    `json:"child_name"`
	Age       int       `json:"age"`
	Turns     []Turn    `json:"turns"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnsweredTurns returns only the turns the child has answered.
func (s *InterviewSession) AnsweredTurns() []Turn {
	answered := make([]Turn, 0, len(s.Turns))
	for _, t := range s.Turns {
		if t.Answer != "" {
			answered = append(answered, t)
		}
	}
	return answered
}
