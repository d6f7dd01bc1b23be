package domain

import "time"

// ConversationTurn is one completed question/answer exchange within a session.
type ConversationTurn struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	At       time.Time `json:"at"`
}
