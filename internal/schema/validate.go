package schema

import (
	"fmt"

	"github.com/PatOConnor43/openapi-validator-proxy/internal/ovp"
)

// Result is the outcome of Validate: either ok, or the first failure
// encountered, classified by kind, with the JSON-path of the offending
// value.
type Result struct {
	OK      bool
	Kind    ovp.FailureKind
	Path    string
	Message string
}

func ok() Result { return Result{OK: true} }

func fail(kind ovp.FailureKind, path, message string) Result {
	return Result{Kind: kind, Path: path, Message: message}
}

// Validate checks value (as decoded by encoding/json, i.e. nil / bool /
// float64 / string / []any / map[string]any) against schema. It returns
// the first failure in document order; failures are never accumulated.
func Validate(s Schema, value any) Result {
	return validateAt(s, value, "$")
}

func validateAt(s Schema, value any, path string) Result {
	switch s.Kind {
	case KindPending:
		reason := s.Reason
		if reason == "" {
			reason = "unknown $ref"
		}
		return fail(ovp.MissingSchemaDefinition, path, fmt.Sprintf("schema reference %q was not resolved at compile time", reason))

	case KindNull:
		if value != nil {
			return actualTypeFailure(value, path)
		}
		return ok()

	case KindBoolean:
		if _, isBool := value.(bool); !isBool {
			return actualTypeFailure(value, path)
		}
		return ok()

	case KindInteger, KindNumber:
		if _, isNum := value.(float64); !isNum {
			return actualTypeFailure(value, path)
		}
		return ok()

	case KindString:
		if _, isStr := value.(string); !isStr {
			return actualTypeFailure(value, path)
		}
		return ok()

	case KindArray:
		arr, isArr := value.([]any)
		if !isArr {
			return actualTypeFailure(value, path)
		}
		if s.MaxItems != nil && len(arr) > *s.MaxItems {
			return fail(ovp.FailedValidationUnexpectedProperty, path+".length",
				fmt.Sprintf("array has %d items, exceeds max_items %d", len(arr), *s.MaxItems))
		}
		for i, el := range arr {
			elemPath := fmt.Sprintf("%s[%d]", path, i)
			if res := validateAt(*s.Items, el, elemPath); !res.OK {
				return res
			}
		}
		return ok()

	case KindObject:
		obj, isObj := value.(map[string]any)
		if !isObj {
			return actualTypeFailure(value, path)
		}
		for _, name := range s.Required {
			if _, present := obj[name]; !present {
				return fail(ovp.FailedValidationUnexpectedNull, path+"."+name,
					fmt.Sprintf("required property %q is missing", name))
			}
		}
		for _, prop := range s.Properties {
			v, present := obj[prop.Name]
			if !present {
				continue
			}
			if res := validateAt(prop.Schema, v, path+"."+prop.Name); !res.OK {
				return res
			}
		}
		return ok()

	case KindAllOf:
		for _, branch := range s.Branches {
			if res := validateAt(branch, value, path); !res.OK {
				return res
			}
		}
		return ok()

	case KindAnyOf:
		// When every branch fails, the failure of the last-attempted
		// branch is returned.
		var last Result
		for _, branch := range s.Branches {
			res := validateAt(branch, value, path)
			if res.OK {
				return ok()
			}
			last = res
		}
		if last.OK {
			// No branches at all: vacuously nothing validated it.
			return fail(ovp.FailedValidationUnsupportedSchemaKind, path, "anyOf has no branches")
		}
		return last

	case KindUnsupported:
		reason := s.Reason
		if reason == "" {
			reason = "schema uses an unsupported keyword"
		}
		return fail(ovp.FailedValidationUnsupportedSchemaKind, path, reason)

	default:
		return fail(ovp.FailedValidationUnsupportedSchemaKind, path, "unknown schema kind")
	}
}

// actualTypeFailure classifies a type mismatch by the actual value's JSON
// kind, per spec: the failure name reflects what was found, not what was
// expected. Arrays and objects have no dedicated "unexpected" kind in the
// closed enumeration, so they fall back to the structural
// FailedValidationUnexpectedProperty kind.
func actualTypeFailure(value any, path string) Result {
	switch v := value.(type) {
	case nil:
		return fail(ovp.FailedValidationUnexpectedNull, path, "expected a different kind, got null")
	case bool:
		return fail(ovp.FailedValidationUnexpectedBoolean, path, "expected a different kind, got boolean")
	case float64:
		return fail(ovp.FailedValidationUnexpectedNumber, path, "expected a different kind, got number")
	case string:
		return fail(ovp.FailedValidationUnexpectedString, path, "expected a different kind, got string")
	case []any:
		return fail(ovp.FailedValidationUnexpectedProperty, path, "expected a different kind, got array")
	case map[string]any:
		return fail(ovp.FailedValidationUnexpectedProperty, path, "expected a different kind, got object")
	default:
		return fail(ovp.FailedValidationUnsupportedSchemaKind, path, fmt.Sprintf("unrecognized decoded JSON type %T", v))
	}
}
