package chat

import "github.com/kailas-cloud/hybridchat/internal/domain/search/result"

// EnhancedPrompt builds the prompt sent to the grounded assistant. Matched internal
// knowledge is folded in as context; otherwise the assistant is told to search the web.
func EnhancedPrompt(question string, internal *result.Result) string {
	if internal != nil && internal.Outcome() == result.Matched {
		return "User question: " + question + "\n\n" +
			"I have relevant internal outdoor gear information:\n" +
			internal.Text() + "\n\n" +
			"Please provide a comprehensive answer. If you need current web information, " +
			"use your web search capability and include citations. " +
			"Combine both internal and web information appropriately."
	}
	return "User question: " + question + "\n\n" +
		"You have access to a web search tool. Please use it to search for current information " +
		"to answer this question. Do not say you cannot provide real-time information - instead, " +
		"use your web search capability to find the most up-to-date information and provide it " +
		"to the user with proper citations.\n\n" +
		"IMPORTANT: Use the web search tool to get current, real-time information for this query."
}
