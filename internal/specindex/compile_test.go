package specindex_test

import (
	"testing"

	"github.com/PatOConnor43/openapi-validator-proxy/internal/schema"
	"github.com/PatOConnor43/openapi-validator-proxy/internal/specindex"
	"github.com/PatOConnor43/openapi-validator-proxy/internal/specload"
)

const petstoreYAML = `
openapi: 3.0.3
info: { title: Petstore, version: "1.0.0" }
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Pet'
  /pets/{petId}:
    get:
      responses:
        "202":
          description: accepted, no content
    delete:
      responses:
        "204":
          description: no content
  /missing_pets_schema:
    get:
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/DoesNotExist'
components:
  schemas:
    Pet:
      type: object
      required: [id, name]
      properties:
        id: { type: integer }
        name: { type: string }
`

func compile(t *testing.T, y string) *specindex.Index {
	t.Helper()
	doc, err := specload.FromBytes([]byte(y))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	idx, err := specindex.Compile(doc)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return idx
}

func findRoute(idx *specindex.Index, tmpl string) *specindex.RouteEntry {
	for i := range idx.Routes {
		if idx.Routes[i].PathTemplate == tmpl {
			return &idx.Routes[i]
		}
	}
	return nil
}

func TestCompile_OperationIDDefaultingAndRefResolution(t *testing.T) {
	idx := compile(t, petstoreYAML)

	pets := findRoute(idx, "/pets")
	if pets == nil {
		t.Fatal("expected /pets route")
	}
	get := pets.OperationsByMethod["GET"]
	if get == nil {
		t.Fatal("expected GET operation")
	}
	if get.OperationID != "listPets" {
		t.Fatalf("operationId = %q, want listPets", get.OperationID)
	}

	entry, ok := get.Responses.Lookup(200)
	if !ok {
		t.Fatal("expected 200 response entry")
	}
	arraySchema := entry.Content["application/json"]
	if arraySchema.Kind != schema.KindArray {
		t.Fatalf("expected array schema, got kind=%v", arraySchema.Kind)
	}
	if arraySchema.Items.Kind != schema.KindObject {
		t.Fatalf("expected items to resolve to object, got kind=%v", arraySchema.Items.Kind)
	}
}

func TestCompile_GeneratedOperationID(t *testing.T) {
	idx := compile(t, petstoreYAML)
	petByID := findRoute(idx, "/pets/{petId}")
	if petByID == nil {
		t.Fatal("expected /pets/{petId} route")
	}
	get := petByID.OperationsByMethod["GET"]
	if get.OperationID != "GET_/pets/{petId}" {
		t.Fatalf("operationId = %q, want generated form", get.OperationID)
	}

	entry, ok := get.Responses.Lookup(202)
	if !ok {
		t.Fatal("expected 202 response entry")
	}
	if entry.HasContent {
		t.Fatal("expected no content declared for 202")
	}
}

func TestCompile_UnresolvedRefBecomesPending(t *testing.T) {
	idx := compile(t, petstoreYAML)
	missing := findRoute(idx, "/missing_pets_schema")
	if missing == nil {
		t.Fatal("expected /missing_pets_schema route")
	}
	entry, ok := missing.OperationsByMethod["GET"].Responses.Lookup(200)
	if !ok {
		t.Fatal("expected 200 entry")
	}
	s := entry.Content["application/json"]
	if s.Kind != schema.KindPending {
		t.Fatalf("expected pending schema for unresolved $ref, got kind=%v", s.Kind)
	}
}

func TestCompile_OneOfIsUnsupported(t *testing.T) {
	const y = `
openapi: 3.0.3
info: { title: t, version: "1.0.0" }
paths:
  /x:
    get:
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                oneOf:
                  - type: string
                  - type: integer
`
	idx := compile(t, y)
	route := findRoute(idx, "/x")
	entry, _ := route.OperationsByMethod["GET"].Responses.Lookup(200)
	s := entry.Content["application/json"]
	if s.Kind != schema.KindUnsupported {
		t.Fatalf("expected oneOf to be Unsupported, got kind=%v", s.Kind)
	}
}

func TestCompile_DefaultStatusFallback(t *testing.T) {
	const y = `
openapi: 3.0.3
info: { title: t, version: "1.0.0" }
paths:
  /x:
    get:
      responses:
        default:
          description: fallback
`
	idx := compile(t, y)
	route := findRoute(idx, "/x")
	entry, ok := route.OperationsByMethod["GET"].Responses.Lookup(500)
	if !ok {
		t.Fatal("expected default fallback to satisfy lookup for any status")
	}
	if entry.HasContent {
		t.Fatal("expected no content on default entry")
	}
}

func TestCompile_CyclicRefIsFatal(t *testing.T) {
	const y = `
openapi: 3.0.3
info: { title: t, version: "1.0.0" }
paths:
  /x:
    get:
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/A'
components:
  schemas:
    A:
      type: object
      properties:
        child:
          $ref: '#/components/schemas/A'
`
	doc, err := specload.FromBytes([]byte(y))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := specindex.Compile(doc); err == nil {
		t.Fatal("expected cyclic $ref to be rejected at compile time")
	}
}
