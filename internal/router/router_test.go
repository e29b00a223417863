package router_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/PatOConnor43/openapi-validator-proxy/internal/ovp"
	"github.com/PatOConnor43/openapi-validator-proxy/internal/router"
	"github.com/PatOConnor43/openapi-validator-proxy/internal/specindex"
)

func op(method, tmpl string) *specindex.OperationDescriptor {
	return &specindex.OperationDescriptor{Method: method, PathTemplate: tmpl, OperationID: method + "_" + tmpl}
}

func buildIndex() *specindex.Index {
	return &specindex.Index{
		Routes: []specindex.RouteEntry{
			{
				PathTemplate: "/pets/{petId}",
				OperationsByMethod: map[string]*specindex.OperationDescriptor{
					"GET":    op("GET", "/pets/{petId}"),
					"DELETE": op("DELETE", "/pets/{petId}"),
				},
			},
			{
				PathTemplate: "/pets/mine",
				OperationsByMethod: map[string]*specindex.OperationDescriptor{
					"GET": op("GET", "/pets/mine"),
				},
			},
		},
	}
}

func TestLookup_LiteralBeatsParameterAtSameDepth(t *testing.T) {
	rt := router.Compile(buildIndex())

	got, vars, err := rt.Lookup("GET", "/pets/mine")
	if err != nil {
		t.Fatalf("unexpected miss: %v", err)
	}
	if got.PathTemplate != "/pets/mine" {
		t.Fatalf("expected literal route to win, got %q", got.PathTemplate)
	}
	if len(vars) != 0 {
		t.Fatalf("expected no captured vars for literal match, got %v", vars)
	}
}

func TestLookup_ParameterMatchCapturesVar(t *testing.T) {
	rt := router.Compile(buildIndex())

	got, vars, err := rt.Lookup("GET", "/pets/123")
	if err != nil {
		t.Fatalf("unexpected miss: %v", err)
	}
	if got.PathTemplate != "/pets/{petId}" {
		t.Fatalf("expected parameterized route, got %q", got.PathTemplate)
	}
	want := map[string]string{"petId": "123"}
	if diff := cmp.Diff(want, vars); diff != "" {
		t.Fatalf("captured vars mismatch (-want +got):\n%s", diff)
	}
}

func TestLookup_PathNotFound(t *testing.T) {
	rt := router.Compile(buildIndex())

	_, _, err := rt.Lookup("GET", "/unknown")
	miss, ok := err.(router.Miss)
	if !ok {
		t.Fatalf("expected router.Miss, got %T (%v)", err, err)
	}
	if miss.Kind != ovp.PathNotFound {
		t.Fatalf("kind = %v, want PathNotFound", miss.Kind)
	}
}

func TestLookup_InvalidHTTPMethod(t *testing.T) {
	rt := router.Compile(buildIndex())

	_, _, err := rt.Lookup("POST", "/pets/123")
	miss, ok := err.(router.Miss)
	if !ok {
		t.Fatalf("expected router.Miss, got %T (%v)", err, err)
	}
	if miss.Kind != ovp.InvalidHTTPMethod {
		t.Fatalf("kind = %v, want InvalidHTTPMethod", miss.Kind)
	}
}

func TestLookup_TrailingSlashNormalized(t *testing.T) {
	rt := router.Compile(buildIndex())

	got, _, err := rt.Lookup("GET", "/pets/mine/")
	if err != nil {
		t.Fatalf("unexpected miss: %v", err)
	}
	if got.PathTemplate != "/pets/mine" {
		t.Fatalf("expected trailing slash to normalize to literal match, got %q", got.PathTemplate)
	}
}

func TestStripUpstreamPrefix(t *testing.T) {
	cases := []struct {
		prefix, path, want string
	}{
		{"/api/v1", "/api/v1/pets", "/pets"},
		{"/api/v1/", "/api/v1/pets", "/pets"},
		{"/api/v1", "/api/v1", "/"},
		{"/api/v1", "/other", "/other"},
		{"", "/pets", "/pets"},
	}
	for _, c := range cases {
		got := router.StripUpstreamPrefix(c.prefix, c.path)
		if got != c.want {
			t.Fatalf("StripUpstreamPrefix(%q, %q) = %q, want %q", c.prefix, c.path, got, c.want)
		}
	}
}
