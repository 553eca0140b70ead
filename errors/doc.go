// Package errors defines the closed error taxonomy shared between the SDK and
// the host proxy, and the classifier that maps proxy HTTP responses onto it.
// Every failure surfaced by the SDK is an *Error carrying one of the fixed
// codes plus an optional sub-code, structured details, and a retry-after hint.
package errors
