// Package classify orchestrates per-transaction validation: given a
// matched operation and the actual upstream response, it produces exactly
// one ovp.Testcase: a Pass, or the first classified Fail.
package classify

import (
	"encoding/json"
	"mime"
	"strconv"
	"strings"

	"github.com/PatOConnor43/openapi-validator-proxy/internal/ovp"
	"github.com/PatOConnor43/openapi-validator-proxy/internal/schema"
	"github.com/PatOConnor43/openapi-validator-proxy/internal/specindex"
)

// Transaction is everything known about one forwarded request/response
// pair, prior to classification.
type Transaction struct {
	CorrelationID string
	Method        string
	Path          string // as received from the client, pre upstream-prefix handling
	Status        int
	Headers       map[string][]string // response headers, as received from upstream
	Body          []byte               // response body; nil/empty both mean "no body"
}

// RouteFailure builds the Testcase for a transaction that never reached an
// operation at all (PathNotFound / InvalidHTTPMethod): the properties
// known at that point are just correlation id, method and path.
func RouteFailure(tx Transaction, kind ovp.FailureKind) ovp.Testcase {
	tc := ovp.Testcase{Name: tx.CorrelationID}
	tc.Set(ovp.PropCorrelationID, tx.CorrelationID)
	tc.Set(ovp.PropMethod, tx.Method)
	tc.Set(ovp.PropPath, tx.Path)
	tc.Outcome = ovp.Failed(kind, "")
	return tc
}

// Classify runs the four-step procedure from the response classifier
// design against a successfully matched operation and returns a fully
// populated Testcase.
func Classify(tx Transaction, op *specindex.OperationDescriptor) ovp.Testcase {
	tc := ovp.Testcase{Name: tx.CorrelationID}
	tc.Set(ovp.PropCorrelationID, tx.CorrelationID)
	tc.Set(ovp.PropMethod, tx.Method)
	tc.Set(ovp.PropPath, tx.Path)
	tc.Set(ovp.PropOperationID, op.OperationID)
	tc.Set(ovp.PropStatusCode, statusString(tx.Status))

	entry, ok := op.Responses.Lookup(tx.Status)
	if !ok {
		tc.Outcome = ovp.Failed(ovp.InvalidStatusCode, "")
		return tc
	}

	if !entry.HasContent {
		if len(tx.Body) == 0 {
			tc.Outcome = ovp.Passed()
			return tc
		}
		tc.Outcome = ovp.Failed(ovp.MismatchNonEmptyBody, "")
		return tc
	}

	contentType, hasHeader := firstContentTypeHeader(tx.Headers)
	if !hasHeader {
		tc.Outcome = ovp.Failed(ovp.MissingContentTypeHeader, "")
		return tc
	}
	primary := primaryMediaType(contentType)
	tc.Set(ovp.PropResponseContentType, primary)

	declared, ok := entry.Content[primary]
	if !ok {
		tc.Outcome = ovp.Failed(ovp.MismatchedContentTypeHeader, "")
		return tc
	}

	if primary != "application/json" {
		// Opaque media type: pass through without schema validation.
		tc.Outcome = ovp.Passed()
		return tc
	}

	var decoded any
	if len(tx.Body) > 0 {
		if err := json.Unmarshal(tx.Body, &decoded); err != nil {
			tc.Outcome = ovp.Failed(ovp.FailedJSONDeserialization, err.Error())
			return tc
		}
	}

	if declared.Kind == schema.KindPending {
		tc.Outcome = ovp.Failed(ovp.MissingSchemaDefinition, "")
		return tc
	}

	result := schema.Validate(declared, decoded)
	if !result.OK {
		tc.Outcome = ovp.Failed(result.Kind, result.Message)
		return tc
	}
	tc.Outcome = ovp.Passed()
	return tc
}

func statusString(code int) string {
	if code == 0 {
		return ""
	}
	return strconv.Itoa(code)
}

func firstContentTypeHeader(headers map[string][]string) (string, bool) {
	for k, vs := range headers {
		if strings.EqualFold(k, "Content-Type") && len(vs) > 0 {
			return vs[0], true
		}
	}
	return "", false
}

// primaryMediaType strips parameters like "; charset=utf-8".
func primaryMediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Fall back to a best-effort split so a malformed header still
		// classifies deterministically instead of aborting.
		if i := strings.IndexByte(contentType, ';'); i >= 0 {
			return strings.TrimSpace(contentType[:i])
		}
		return strings.TrimSpace(contentType)
	}
	return mt
}
