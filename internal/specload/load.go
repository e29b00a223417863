// Package specload loads an OpenAPI 3.0.x document (YAML or JSON) from
// disk into kin-openapi's in-memory document model; the "OpenAPI input"
// collaborator spec.md §6 treats as external.
package specload

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// FromFile loads the document at path. A malformed document (bad
// YAML/JSON, not a document at all) is process-fatal (spec.md §7: exit
// code 1), never a per-transaction failure.
//
// Unlike the teacher's contract.LoadFromFile, this deliberately skips
// doc.Validate(ctx): kin-openapi's strict validation rejects a document
// containing an unresolvable internal $ref, which would turn a single
// broken operation into a startup abort. Spec §4.2/§9 require the
// opposite: the broken operation still routes, and the unresolved
// schema only surfaces as a per-transaction MissingSchemaDefinition at
// validation time (see specindex.convertSchemaRef's Pending branch).
// cubahno-connexions's NewDocumentFromFile/NewDocumentFromString load
// the same way, with no Validate call.
func FromFile(path string) (*openapi3.T, error) {
	loader := &openapi3.Loader{IsExternalRefsAllowed: true}
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	return doc, nil
}

// FromBytes loads a document already in memory (YAML or JSON);
// primarily useful for tests. See FromFile for why this does not call
// doc.Validate.
func FromBytes(b []byte) (*openapi3.T, error) {
	loader := &openapi3.Loader{IsExternalRefsAllowed: true}
	doc, err := loader.LoadFromData(b)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	return doc, nil
}
