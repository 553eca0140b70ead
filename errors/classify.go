package errors

import "strings"

// placeholderMessage stands in for proxy replies that carry no usable text.
const placeholderMessage = "Unknown error"

// substringRules drive the content-based classification pass. The proxy does
// not emit a machine-readable error kind, so the wording below is a
// compatibility contract with its responses; the order resolves overlapping
// matches and must not change.
var substringRules = []struct {
	needles []string
	code    Code
}{
	{needles: []string{"allowance", "No spending allowances"}, code: CodeInsufficientAllowance},
	{needles: []string{"rejected by user"}, code: CodeTransactionRejected},
	{needles: []string{"approval timeout"}, code: CodeTransactionTimeout},
	{needles: []string{"Rate limit"}, code: CodeRateLimited},
	{needles: []string{"RPC Error"}, code: CodeRPCError},
}

var statusCodes = map[int]Code{
	401: CodeUnauthorized,
	403: CodeForbidden,
	404: CodeNotFound,
	429: CodeRateLimited,
	408: CodeTimeout,
}

// Classify converts a non-2xx proxy reply into exactly one typed error. The
// body is the best-effort JSON decode of the response and may be nil; the
// message is read from its "error" key, then "message", then the placeholder.
// Substring rules win over the status fallback regardless of status code.
func Classify(status int, body map[string]any, opts ...Option) *Error {
	message := messageFromBody(body)

	code, matched := matchSubstring(message)
	if !matched {
		if mapped, ok := statusCodes[status]; ok {
			code = mapped
		} else {
			code = CodeAPIError
		}
	}

	subCode := status
	if code == CodeRPCError {
		if rpcCode, ok := numberField(body, "code"); ok {
			subCode = rpcCode
		}
	}

	all := make([]Option, 0, len(opts)+2)
	all = append(all, WithSubCode(subCode))
	if len(body) > 0 {
		all = append(all, WithDetails(body))
	}
	all = append(all, opts...)
	return New(code, message, all...)
}

func matchSubstring(message string) (Code, bool) {
	for _, rule := range substringRules {
		for _, needle := range rule.needles {
			if strings.Contains(message, needle) {
				return rule.code, true
			}
		}
	}
	return CodeUnknown, false
}

func messageFromBody(body map[string]any) string {
	if msg := stringField(body, "error"); msg != "" {
		return msg
	}
	if msg := stringField(body, "message"); msg != "" {
		return msg
	}
	return placeholderMessage
}

func stringField(body map[string]any, key string) string {
	if body == nil {
		return ""
	}
	value, _ := body[key].(string)
	return value
}

func numberField(body map[string]any, key string) (int, bool) {
	if body == nil {
		return 0, false
	}
	switch v := body[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}
