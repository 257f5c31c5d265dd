// Package llm provides an OpenRouter-compatible chat client that turns a
// topic into a short-form video script.
//
// Client.CompleteJSON sends a system/user prompt pair and returns the model's
// JSON payload; Client.GenerateScript builds on it and decodes a Script.
// Client.HealthCheck verifies the key and model with a tiny JSON ping.
//
// # Retry Behaviour
//
// Requests are retried on HTTP 408/429/5xx, empty completions and network
// timeouts with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). A Retry-After header overrides the computed delay. Context
// cancellation aborts retries immediately.
package llm
