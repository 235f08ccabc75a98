// Package explain turns a finished quality report into a short
// business-facing narrative using an external language model.
//
// The narrative is strictly advisory. Detection is deterministic and
// complete before any provider is contacted: the explanation never adds,
// removes, or reorders issues, and a failed or disabled provider leaves
// the report untouched.
//
// Supported providers are Groq (the default), OpenAI, Anthropic, and
// Gemini. Groq and OpenAI share one generator because Groq exposes an
// OpenAI-compatible API; only the base URL and model name differ.
//
// # Usage
//
//	generator, err := explain.New(ctx, "groq", "", "")
//	if err != nil {
//	    // Missing API key or unknown provider; run without narrative.
//	}
//	text, err := generator.Generate(ctx, report)
//
// API keys are read from provider-specific environment variables
// (GROQ_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY)
// unless passed explicitly.
package explain
