// Package providers defines the provider client contract used by the
// dispatch orchestrator, the classified error taxonomy the retry policy
// consumes, and a shared HTTP base client that maps upstream responses
// onto that taxonomy.
//
// Each upstream LLM service gets its own subpackage implementing Client
// (see gemini and openrouter). Adding a provider means adding a variant
// and registering it; the orchestrator is never modified.
package providers
