// Package analyst implements the natural-language query pipeline: classify a
// question, generate and run SQL when the question calls for data, and
// synthesize a conversational answer.
package analyst

import (
	"fmt"
	"strings"

	"github.com/evinsights/analyst-engine/pkg/datasource"
)

// Kind is the routing category for a question.
type Kind string

const (
	// KindGeneral is background knowledge or dataset-description questions.
	// Answered without touching the database.
	KindGeneral Kind = "GENERAL"

	// KindDataQuery asks for specific numbers or statistics that require
	// running a query.
	KindDataQuery Kind = "DATA_QUERY"

	// KindHybrid needs both background knowledge and database data.
	KindHybrid Kind = "HYBRID"
)

// Classification is the structured routing decision for one question.
type Classification struct {
	Type          Kind   `json:"type"`
	NeedsDatabase bool   `json:"needs_database"`
	Reasoning     string `json:"reasoning"`
}

// Response is the full outcome of one analyst turn.
type Response struct {
	Question string                      `json:"question"`
	Kind     Kind                        `json:"kind"`
	SQL      string                      `json:"sql,omitempty"`
	Result   *datasource.ExecutionResult `json:"result,omitempty"`
	Answer   string                      `json:"answer"`
}

// Exchange is one prior question/answer pair in a conversation.
type Exchange struct {
	Question string
	Answer   string
}

// Conversation is caller-owned chat state. The engine reads it to give the
// general-knowledge synthesizer context and appends to it after each turn; it
// holds no engine-side state of its own.
type Conversation struct {
	exchanges []Exchange
	limit     int
}

// NewConversation creates a conversation that retains at most limit exchanges.
func NewConversation(limit int) *Conversation {
	if limit <= 0 {
		limit = 10
	}
	return &Conversation{limit: limit}
}

// Append records a completed exchange, evicting the oldest when over limit.
func (c *Conversation) Append(question, answer string) {
	c.exchanges = append(c.exchanges, Exchange{Question: question, Answer: answer})
	if len(c.exchanges) > c.limit {
		c.exchanges = c.exchanges[len(c.exchanges)-c.limit:]
	}
}

// Len returns the number of retained exchanges.
func (c *Conversation) Len() int {
	return len(c.exchanges)
}

// Render formats the retained exchanges as prompt context. Empty string when
// the conversation has no history.
func (c *Conversation) Render() string {
	if len(c.exchanges) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, ex := range c.exchanges {
		fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", ex.Question, ex.Answer)
	}
	return b.String()
}
