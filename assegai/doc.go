// Package assegai is the client SDK that sandboxed agents use to reach the
// host proxy. The proxy keeps the wallet keys and the model provider API keys
// on its side of the boundary; the SDK only ever holds scoped agent
// credentials and speaks JSON to the proxy over localhost.
//
// A Client is constructed from environment variables or explicit options and
// exposes chain reads, transaction requests, model calls, and operator-visible
// logging. Every failure surfaces as an *errors.Error with a stable code, so
// agents can branch on error kinds instead of parsing messages.
package assegai
