// Package reply holds the labeled fragments and stream events sent back to the user.
package reply

import "strings"

// Fragment labels.
const (
	LabelInternal = "**Internal Knowledge:**"
	LabelExternal = "**Web-grounded Assistant:**"
)

// FallbackText is sent when no fragment could be produced.
const FallbackText = `Hello! I'm your outdoor gear assistant. I'm currently operating with limited capabilities, but I can still help you with:

• Information about camping equipment and outdoor gear
• Product details about tents, backpacks, hiking boots, and camping supplies
• General outdoor activity guidance and tips
• Equipment recommendations based on your needs

For weather information, current news, or other external information, I may need my web search capabilities to be working properly.

What outdoor gear or camping questions can I help you with?`

// ApologyText is sent when query handling failed internally.
const ApologyText = "I apologize, but I'm unable to process your request at the moment."

// Fragment is one labeled part of a reply.
type Fragment struct {
	Label string
	Text  string
}

// Render formats the fragment as "label\ntext".
func (f Fragment) Render() string {
	return f.Label + "\n" + f.Text
}

// Compose joins fragments with a blank line, or returns FallbackText when empty.
func Compose(fragments []Fragment) string {
	if len(fragments) == 0 {
		return FallbackText
	}
	parts := make([]string, len(fragments))
	for i, f := range fragments {
		parts[i] = f.Render()
	}
	return strings.Join(parts, "\n\n")
}

// EventType is the stream event kind.
type EventType string

// Event types.
const (
	EventCompletedMessage EventType = "completed_message"
	EventStreamEnd        EventType = "stream_end"
)

// Event is one item of the reply stream.
type Event struct {
	Type        EventType `json:"type"`
	Content     string    `json:"content"`
	Annotations []any     `json:"annotations"`
}

// Events builds the two-event stream for a composed reply.
func Events(text string) []Event {
	return []Event{
		{Type: EventCompletedMessage, Content: text, Annotations: []any{}},
		{Type: EventStreamEnd, Content: "", Annotations: []any{}},
	}
}
