// Package ovp holds the runtime vocabulary shared by the validation engine
// and the report store: the closed failure-kind enum and the testcase
// shape that every transaction ultimately produces.
package ovp

// FailureKind is the closed set of per-transaction failure classifications.
// It is never extended at runtime; every value carries a fixed message
// template used when no more specific message is supplied.
type FailureKind string

const (
	PathNotFound                          FailureKind = "PathNotFound"
	InvalidHTTPMethod                     FailureKind = "InvalidHTTPMethod"
	InvalidStatusCode                     FailureKind = "InvalidStatusCode"
	MissingResponseDefinition             FailureKind = "MissingResponseDefinition"
	MissingContentTypeHeader              FailureKind = "MissingContentTypeHeader"
	MismatchedContentTypeHeader           FailureKind = "MismatchedContentTypeHeader"
	MismatchNonEmptyBody                  FailureKind = "MismatchNonEmptyBody"
	MissingSchemaDefinition               FailureKind = "MissingSchemaDefinition"
	FailedJSONDeserialization             FailureKind = "FailedJSONDeserialization"
	FailedValidationUnexpectedNull        FailureKind = "FailedValidationUnexpectedNull"
	FailedValidationUnexpectedBoolean     FailureKind = "FailedValidationUnexpectedBoolean"
	FailedValidationUnexpectedNumber      FailureKind = "FailedValidationUnexpectedNumber"
	FailedValidationUnexpectedString      FailureKind = "FailedValidationUnexpectedString"
	FailedValidationUnexpectedProperty    FailureKind = "FailedValidationUnexpectedProperty"
	FailedValidationUnsupportedSchemaKind FailureKind = "FailedValidationUnsupportedSchemaKind"
)

// defaultMessages gives every FailureKind a human-readable default. Callers
// that have a more specific message (e.g. "expected integer at $.id, got
// string") should use that instead; this is the fallback.
var defaultMessages = map[FailureKind]string{
	PathNotFound:                          "no path template matched the request",
	InvalidHTTPMethod:                     "path matched but method is not defined for this operation",
	InvalidStatusCode:                     "response status has neither an exact nor a default entry",
	MissingResponseDefinition:             "operation has no response definition at all",
	MissingContentTypeHeader:              "response entry declares content but no Content-Type header was present",
	MismatchedContentTypeHeader:           "response Content-Type is not one of the declared media types",
	MismatchNonEmptyBody:                  "response entry declares no content but the body was non-empty",
	MissingSchemaDefinition:               "schema reference could not be resolved at compile time",
	FailedJSONDeserialization:             "response body could not be parsed as JSON",
	FailedValidationUnexpectedNull:        "value was null, or a required field/expected value was missing",
	FailedValidationUnexpectedBoolean:     "value was a boolean where a different kind was expected",
	FailedValidationUnexpectedNumber:      "value was a number where a different kind was expected",
	FailedValidationUnexpectedString:      "value was a string where a different kind was expected",
	FailedValidationUnexpectedProperty:    "value violated a structural constraint (e.g. array length)",
	FailedValidationUnsupportedSchemaKind: "schema uses a keyword this validator does not support",
}

// Message returns the default human message for kind.
func (k FailureKind) Message() string {
	if m, ok := defaultMessages[k]; ok {
		return m
	}
	return string(k)
}

func (k FailureKind) String() string { return string(k) }
