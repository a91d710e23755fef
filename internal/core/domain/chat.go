package domain

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single turn in a conversation.
// History is supplied fresh by the caller on every request;
// the core holds no session state.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// ChatOptions configures a single retrieval-augmented chat request.
type ChatOptions struct {
	// TopK is the number of chunks to retrieve (default 4).
	TopK int
}

// ChatResult is the outcome of a retrieval-augmented chat request.
type ChatResult struct {
	// Answer is the generated text, returned verbatim.
	Answer string

	// Sources are the retrieved chunks the answer was grounded in,
	// in descending similarity order.
	Sources []RetrievedSource
}

// ValidRole reports whether role is a recognised conversation role.
func ValidRole(role string) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}
