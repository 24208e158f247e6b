// Package oracle implements the negotiation engine's text oracle on top of an
// OpenAI-compatible chat completions API.
//
// The default backend is Groq, reached through go-openai with a custom base
// URL. Replies are returned verbatim; the engine treats them as untrusted
// text and parses what it needs.
package oracle
