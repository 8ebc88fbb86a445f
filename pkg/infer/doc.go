// Package infer talks to the external type inference engine.
//
// The engine answers GET /typing?expression=... with the parsed expression,
// its principal type, the abstract syntax tree, the typing derivation and
// the unification equations, all as rich text. [Client.Type] fetches and
// decodes that answer into a [diagram.TypingResult]:
//
//	client, err := infer.NewClient("http://localhost:8080")
//	res, err := client.Type(ctx, `\x.\y.x`)
//	if errors.Is(err, ...) // see below
//
// Expressions the engine cannot parse or type come back as errors with
// code EXPRESSION_REJECTED whose message is the engine's explanation.
// Network failures, 429 and 5xx responses are retried with exponential
// backoff before failing with ENGINE_UNAVAILABLE; running out of time
// yields TIMEOUT.
//
// [Samples] lists the example programs offered by the original web
// interface, and [NormalizeExpression] applies its input conventions.
package infer
