/*
Package faceless is a persona chat backend: a client picks (or invents) a fictional persona
and converses with a language model that stays in character, in either a family-friendly
("regular") or permissive ("uncensored") content mode.

# Architecture

The response-generation core lives in internal/runtime: it assembles the conversation
context, calls the model through ports.ChatModel and runs the lexical filter of
pkg/moderation over family-friendly output. The Service in this package wires the core to
the persona catalogue (ports.PersonaStore) and server-side conversations (pkg/session), and
is what the HTTP, MCP and terminal front-ends talk to.

# Usage

	svc, err := faceless.New(ctx,
		faceless.WithModel(myModel),
	)
	if err != nil {
		log.Fatal(err)
	}

	p, _ := svc.RandomPersona(ctx)
	res, err := svc.Chat(ctx, faceless.ChatRequest{
		Message: "Who are you?",
		Persona: p.Description,
		Mode:    "regular",
	})
	fmt.Println(res.Response, res.Filtered)

A model that cannot be constructed because its credential is missing does not prevent the
Service from starting: chat is disabled (Chat returns domain.ErrChatUnavailable) while the
persona operations keep working.
*/
package faceless
