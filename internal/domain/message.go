package domain

// Author identifies who wrote a conversation turn.
type Author string

const (
	AuthorUser Author = "user"
	AuthorBot  Author = "bot"
)

// MessageStatus is an optional rendering hint attached to a message.
type MessageStatus string

const (
	StatusNone   MessageStatus = ""
	StatusTyping MessageStatus = "typing"
	StatusDone   MessageStatus = "done"
)

// Message is a single turn in the conversation log.
// Messages are immutable once appended to the store.
type Message struct {
	ID     int64         `json:"id"`
	Author Author        `json:"author"`
	Text   string        `json:"text"`
	Status MessageStatus `json:"status,omitempty"`
}

// FromUser reports whether the turn was authored by the user.
func (m Message) FromUser() bool { return m.Author == AuthorUser }

// Chat roles understood by the completion provider.
const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one entry of a completion request payload.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is sent to the completion provider.
type ChatRequest struct {
	Messages    []ChatMessage `json:"messages"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
}

// ChatChoice is one candidate reply returned by the provider.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// ChatResponse is returned from the completion provider.
type ChatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   Usage        `json:"usage"`
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
