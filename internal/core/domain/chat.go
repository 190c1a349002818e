package domain

import "time"

// MessageRole identifies the author of a chat message
type MessageRole string

const (
	MessageRoleUser   MessageRole = "user"
	MessageRoleSystem MessageRole = "system"
)

// Chat is a conversation bound to a project. Each project has at most one
// chat; FindOrCreate semantics on the store enforce this.
type Chat struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is one turn in a chat.
type Message struct {
	ID        string      `json:"id"`
	ChatID    string      `json:"chat_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// NoAnswerMessage is the user-visible fallback when the retrieval pipeline
// produced no usable answer.
const NoAnswerMessage = "Sorry, I could not find an answer to that in this project."
