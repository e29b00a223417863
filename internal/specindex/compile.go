package specindex

import (
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/PatOConnor43/openapi-validator-proxy/internal/schema"
)

// CompileError is returned only for the one class of startup-fatal defect
// this package recognizes: a cyclic $ref chain. Every other irregularity
// (an unresolvable $ref, an unsupported keyword) is deferred to
// validation time per spec; see schema.KindPending / KindUnsupported.
type CompileError struct {
	Path   string
	Method string
	Detail string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("specindex: compiling %s %s: %s", e.Method, e.Path, e.Detail)
}

var methodOrder = []string{"GET", "PUT", "POST", "DELETE", "OPTIONS", "HEAD", "PATCH", "TRACE"}

// Compile walks doc and produces the routable operation index. Paths are
// walked in sorted order (doc.Paths.Map() has no guaranteed order in
// kin-openapi, so sorting gives the determinism required by the
// "identical input yields identical output" invariant).
func Compile(doc *openapi3.T) (*Index, error) {
	if doc == nil || doc.Paths == nil {
		return &Index{}, nil
	}

	paths := make([]string, 0, doc.Paths.Len())
	for p := range doc.Paths.Map() {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	idx := &Index{}
	for _, p := range paths {
		item := doc.Paths.Value(p)
		if item == nil {
			continue
		}
		ops := operationsOf(item)
		entry := RouteEntry{PathTemplate: p, OperationsByMethod: map[string]*OperationDescriptor{}}
		for _, method := range methodOrder {
			op := ops[method]
			if op == nil {
				continue
			}
			desc, err := compileOperation(p, method, op)
			if err != nil {
				return nil, err
			}
			entry.OperationsByMethod[method] = desc
		}
		if len(entry.OperationsByMethod) > 0 {
			idx.Routes = append(idx.Routes, entry)
		}
	}
	return idx, nil
}

func operationsOf(item *openapi3.PathItem) map[string]*openapi3.Operation {
	return map[string]*openapi3.Operation{
		"GET":     item.Get,
		"PUT":     item.Put,
		"POST":    item.Post,
		"DELETE":  item.Delete,
		"OPTIONS": item.Options,
		"HEAD":    item.Head,
		"PATCH":   item.Patch,
		"TRACE":   item.Trace,
	}
}

func compileOperation(path, method string, op *openapi3.Operation) (*OperationDescriptor, error) {
	opID := op.OperationID
	if opID == "" {
		opID = fmt.Sprintf("%s_%s", method, path)
	}

	desc := &OperationDescriptor{
		OperationID:  opID,
		Method:       method,
		PathTemplate: path,
		Responses:    ResponseTable{},
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		for mt := range op.RequestBody.Value.Content {
			desc.RequestBodyContentType = mt
			break
		}
	}

	if op.Responses == nil {
		return desc, nil
	}
	for status, respRef := range op.Responses.Map() {
		if respRef == nil || respRef.Value == nil {
			continue
		}
		key := StatusKey(status)
		if status == "default" {
			key = Default
		}
		entry := ResponseEntry{}
		if respRef.Value.Description != nil {
			entry.Description = *respRef.Value.Description
		}
		if len(respRef.Value.Content) > 0 {
			entry.HasContent = true
			entry.Content = map[string]SchemaRef{}
			for mt, media := range respRef.Value.Content {
				if media == nil || media.Schema == nil {
					entry.Content[mt] = schema.Pending(mt + " (no schema declared)")
					continue
				}
				visiting := map[*openapi3.Schema]bool{}
				s, err := convertSchemaRef(media.Schema, visiting)
				if err != nil {
					return nil, &CompileError{Path: path, Method: method, Detail: err.Error()}
				}
				entry.Content[mt] = s
			}
		}
		desc.Responses[key] = entry
	}
	return desc, nil
}

// convertSchemaRef dereferences one $ref node into a resolved schema.Schema
// tree. visiting tracks nodes on the current DFS stack (by *openapi3.Schema
// pointer identity) to reject cyclic $ref chains at compile time.
func convertSchemaRef(ref *openapi3.SchemaRef, visiting map[*openapi3.Schema]bool) (schema.Schema, error) {
	if ref == nil {
		return schema.Pending("(nil schema ref)"), nil
	}
	if ref.Value == nil {
		return schema.Pending(ref.Ref), nil
	}
	return convertSchema(ref.Value, ref.Ref, visiting)
}

func convertSchema(s *openapi3.Schema, refName string, visiting map[*openapi3.Schema]bool) (schema.Schema, error) {
	if visiting[s] {
		return schema.Schema{}, fmt.Errorf("cyclic $ref detected at %q", refName)
	}
	visiting[s] = true
	defer delete(visiting, s)

	switch {
	case len(s.AllOf) > 0:
		branches := make([]schema.Schema, 0, len(s.AllOf))
		for _, b := range s.AllOf {
			bs, err := convertSchemaRef(b, visiting)
			if err != nil {
				return schema.Schema{}, err
			}
			branches = append(branches, bs)
		}
		return schema.MergeAllOf(branches), nil

	case len(s.AnyOf) > 0:
		branches := make([]schema.Schema, 0, len(s.AnyOf))
		for _, b := range s.AnyOf {
			bs, err := convertSchemaRef(b, visiting)
			if err != nil {
				return schema.Schema{}, err
			}
			branches = append(branches, bs)
		}
		return schema.AnyOf(branches), nil

	case len(s.OneOf) > 0:
		return schema.Unsupported("oneOf is not supported"), nil
	}

	typ := primaryType(s)
	switch typ {
	case "object", "":
		// Schemas with no explicit "type" but with properties are treated
		// as objects, matching common OpenAPI authoring practice.
		if typ == "" && len(s.Properties) == 0 {
			return schema.Unsupported("schema has no recognizable type"), nil
		}
		props := make([]schema.Property, 0, len(s.Properties))
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ps, err := convertSchemaRef(s.Properties[name], visiting)
			if err != nil {
				return schema.Schema{}, err
			}
			props = append(props, schema.Property{Name: name, Schema: ps})
		}
		return schema.Object(append([]string(nil), s.Required...), props), nil

	case "array":
		if s.Items == nil {
			return schema.Unsupported("array schema has no items"), nil
		}
		items, err := convertSchemaRef(s.Items, visiting)
		if err != nil {
			return schema.Schema{}, err
		}
		var maxItems *int
		if s.MaxItems != nil {
			n := int(*s.MaxItems)
			maxItems = &n
		}
		return schema.Array(items, maxItems), nil

	case "string":
		return schema.String, nil
	case "integer":
		return schema.Integer, nil
	case "number":
		return schema.Number, nil
	case "boolean":
		return schema.Boolean, nil
	case "null":
		return schema.Null, nil
	default:
		return schema.Unsupported(fmt.Sprintf("unsupported schema type %q", typ)), nil
	}
}

// primaryType returns the first declared JSON type of s, or "" if none is
// declared (kin-openapi v0.126 models Type as a *openapi3.Types slice).
func primaryType(s *openapi3.Schema) string {
	if s.Type == nil {
		return ""
	}
	types := s.Type.Slice()
	if len(types) == 0 {
		return ""
	}
	return types[0]
}

