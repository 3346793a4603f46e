package llm

import (
	"github.com/anwaleed303-sys/AI-Voice-Assistant/internal/model"
)

// DefaultModel is the model used when the caller names none, or names one
// outside the allowlist.
const DefaultModel = "llama-3.3-70b-versatile"

// RecommendedModels is the allowlist accepted by the proxy, in order of
// preference. Requests naming anything else fall back to DefaultModel.
var RecommendedModels = []string{
	"llama-3.3-70b-versatile",
	"llama-3.1-70b-versatile",
	"llama-3.1-8b-instant",
	"mixtral-8x7b-32768",
	"gemma2-9b-it",
}

// ResolveModel returns name if it is on the allowlist, else DefaultModel.
func ResolveModel(name string) string {
	for _, m := range RecommendedModels {
		if m == name {
			return m
		}
	}
	return DefaultModel
}

// SystemPrompt is prepended to every proxied conversation. The assistant must
// answer in the user's own language and keep replies short enough to speak.
const SystemPrompt = `You are an intelligent and friendly AI voice assistant that can communicate in multiple languages.

CRITICAL: Always respond in the SAME LANGUAGE that the user is using. If the user speaks in Urdu, respond in Urdu. If they speak in Hindi, respond in Hindi. If they speak in Arabic, respond in Arabic. Match the user's language exactly.

Key guidelines:
- Detect the user's language automatically and respond in that language
- Keep responses concise and natural for voice interaction (2-4 sentences typically)
- Be conversational and engaging, as if speaking to a friend
- Provide accurate and helpful information
- If unsure, acknowledge it honestly in the user's language
- For complex topics, break down information into digestible parts
- Use examples when helpful
- Be empathetic and understanding
- Adapt your tone to match the user's query (professional for serious topics, casual for general chat)
- For questions requiring real-time data (weather, news, stock prices), acknowledge that you may not have the latest information

Languages supported: English, Urdu (اردو), Hindi (हिन्दी), Arabic (العربية), and many more.`

// WithSystemPrompt prepends the system message to history if the first
// message is not already a system message.
func WithSystemPrompt(messages []model.ChatMessage) []model.ChatMessage {
	if len(messages) > 0 && messages[0].Role == "system" {
		return messages
	}
	out := make([]model.ChatMessage, 0, len(messages)+1)
	out = append(out, model.ChatMessage{Role: "system", Content: SystemPrompt})
	return append(out, messages...)
}
