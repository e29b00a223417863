// Package specindex walks a parsed OpenAPI 3.0 document into the routable
// operation index the rest of the proxy validates against: per-operation
// request/response descriptors with every $ref dereferenced.
package specindex

import (
	"fmt"

	"github.com/PatOConnor43/openapi-validator-proxy/internal/schema"
)

// StatusKey identifies one entry of a ResponseTable: either an exact
// 3-digit status code or the Default sentinel.
type StatusKey string

// Default is the sentinel StatusKey matching OpenAPI's "default" response.
const Default StatusKey = "default"

// StatusKeyForCode returns the exact StatusKey for an HTTP status code.
func StatusKeyForCode(code int) StatusKey { return StatusKey(fmt.Sprintf("%d", code)) }

// ResponseEntry is one (status, content) definition of an operation's
// response table. When HasContent is false an empty body is required.
type ResponseEntry struct {
	Description string
	// Content maps media type (e.g. "application/json") to its resolved
	// schema. HasContent is true when the document declares at least one
	// media type; a missing content key and an empty one both leave it
	// false, which means an empty body is required.
	HasContent bool
	Content    map[string]SchemaRef
}

// SchemaRef is a resolved schema tree. An unresolved $ref is represented
// in-tree as schema.KindPending, wherever it occurs (top-level content
// schema or nested inside it); a validation-time failure
// (MissingSchemaDefinition), never a compile-time abort, per spec.
type SchemaRef = schema.Schema

// ResponseTable maps StatusKey to ResponseEntry for one operation.
type ResponseTable map[StatusKey]ResponseEntry

// Lookup applies the spec's fallback policy: exact match, else Default,
// else miss.
func (t ResponseTable) Lookup(code int) (ResponseEntry, bool) {
	if e, ok := t[StatusKeyForCode(code)]; ok {
		return e, true
	}
	if e, ok := t[Default]; ok {
		return e, true
	}
	return ResponseEntry{}, false
}

// OperationDescriptor is everything the validation engine needs about one
// (path-template, method) operation, with all schemas inlined.
type OperationDescriptor struct {
	OperationID            string
	Method                 string
	PathTemplate           string
	RequestBodyContentType string
	Responses              ResponseTable
}

// Index is the compiled result: one OperationDescriptor per (path
// template, method), grouped by path template for the router to consume.
type Index struct {
	// Routes is sorted by path template.
	Routes []RouteEntry
}

// RouteEntry groups every HTTP-method operation declared under one path
// template.
type RouteEntry struct {
	PathTemplate       string
	OperationsByMethod map[string]*OperationDescriptor
}
