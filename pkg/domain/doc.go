/*
Package domain contains the core domain models of the Faceless persona chat service.

It defines the request and result shapes of the response-generation pipeline, the
conversation vocabulary shared by every adapter, and the sentinel errors callers match
with errors.Is. This package is kept pure and free of I/O, following Hexagonal
Architecture principles.

# Key Entities

  - Mode: The content policy of a request (regular or uncensored).
  - Turn: One message of a conversation, authored by the user ("human") or the model ("ai").
  - Instruction: One entry of the ordered sequence handed to a language model.
  - GenerationRequest / GenerationResult: The input and output of one generation.
  - Persona: A stored character description.
  - Conversation: A server-side transcript addressed by session ID.
*/
package domain
