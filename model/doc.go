// Package model holds the provider-agnostic contract for language model
// backends. Streaming and one-shot generation share a single interface, and
// tool calls are normalized (ToolDefinition, ToolCall) so agents and flows
// never touch vendor SDK types. Concrete providers live in subpackages
// (openai, anthropic); MockModel covers tests.
package model
