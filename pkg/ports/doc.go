/*
Package ports defines the driven ports (interfaces) of the Faceless service.

These interfaces decouple the response-generation core and the transports from concrete
model providers and storage backends, so tests can substitute deterministic stubs.

# Key Interfaces

  - ChatModel: The remote language-model capability (Groq, Gemini, or a test stub).
  - PersonaStore: The persona catalogue (SQLite, memory).
  - ConversationStore: Server-side transcripts addressed by session ID (Redis, memory).
  - DistributedLocker: Provides distributed locking for concurrent session access.
*/
package ports
