// Package router compiles OpenAPI path templates ("/pets/{petId}") into a
// matcher that, given a runtime request path and method, returns the
// matched operation and captured path variables, or a typed miss.
package router

import (
	"sort"
	"strings"

	"github.com/PatOConnor43/openapi-validator-proxy/internal/ovp"
	"github.com/PatOConnor43/openapi-validator-proxy/internal/specindex"
)

// Router is an immutable, compiled set of path templates. It is built
// once at startup and is safe for concurrent read-only use thereafter.
type Router struct {
	routes []compiledRoute
}

type compiledRoute struct {
	template string
	segments []segment
	ops      map[string]*specindex.OperationDescriptor
}

type segment struct {
	literal string
	isParam bool
	name    string // when isParam
}

// Miss describes why a lookup failed.
type Miss struct {
	Kind ovp.FailureKind // PathNotFound or InvalidHTTPMethod
}

func (m Miss) Error() string { return m.Kind.Message() }

// Compile builds a Router from the routes recorded in idx. Compiled routes
// are sorted by routeSpecificity: templates with more segments come first,
// and among templates of equal length, those with more literal segments
// come first. Only equal-length templates can match the same path, so a
// literal-segment template is tried before a parameter-segment one.
func Compile(idx *specindex.Index) *Router {
	r := &Router{}
	for _, re := range idx.Routes {
		r.routes = append(r.routes, compiledRoute{
			template: re.PathTemplate,
			segments: splitTemplate(re.PathTemplate),
			ops:      re.OperationsByMethod,
		})
	}
	sort.SliceStable(r.routes, func(i, j int) bool {
		return routeSpecificity(r.routes[i].segments) > routeSpecificity(r.routes[j].segments)
	})
	return r
}

func splitTemplate(tmpl string) []segment {
	tmpl = strings.Trim(tmpl, "/")
	if tmpl == "" {
		return nil
	}
	parts := strings.Split(tmpl, "/")
	segs := make([]segment, 0, len(parts))
	for _, p := range parts {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			segs = append(segs, segment{isParam: true, name: strings.TrimSuffix(strings.TrimPrefix(p, "{"), "}")})
		} else {
			segs = append(segs, segment{literal: p})
		}
	}
	return segs
}

// routeSpecificity scores a template so literal segments outrank
// parameter segments: each literal segment contributes 2 points, each
// parameter segment 1, and longer templates (more segments) outrank
// shorter prefixes of the same shape.
func routeSpecificity(segs []segment) int {
	score := len(segs) * 10
	for _, s := range segs {
		if !s.isParam {
			score += 2
		} else {
			score++
		}
	}
	return score
}

// Lookup normalizes a trailing slash away, then matches path against the
// compiled routes in specificity order, returning the first route whose
// segment shape matches. If a template matches but method has no
// operation, that is reported as InvalidHTTPMethod, not PathNotFound,
// even if a less-specific template would also have matched the path.
func (r *Router) Lookup(method, path string) (*specindex.OperationDescriptor, map[string]string, error) {
	reqSegs := splitTemplate(path)

	for _, route := range r.routes {
		vars, ok := matchSegments(route.segments, reqSegs)
		if !ok {
			continue
		}
		if op, ok := route.ops[strings.ToUpper(method)]; ok {
			return op, vars, nil
		}
		return nil, nil, Miss{Kind: ovp.InvalidHTTPMethod}
	}
	return nil, nil, Miss{Kind: ovp.PathNotFound}
}

func matchSegments(tmpl, req []segment) (map[string]string, bool) {
	if len(tmpl) != len(req) {
		return nil, false
	}
	var vars map[string]string
	for i, ts := range tmpl {
		rs := req[i]
		if ts.isParam {
			if vars == nil {
				vars = map[string]string{}
			}
			vars[ts.name] = rs.literal
			continue
		}
		if ts.literal != rs.literal {
			return nil, false
		}
	}
	return vars, true
}

// StripUpstreamPrefix removes prefix from path for router lookup purposes.
// A trailing slash on prefix is normalized away first so
// "http://host/api/v1" and "http://host/api/v1/" behave identically.
func StripUpstreamPrefix(prefix, path string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return path
	}
	if path == prefix {
		return "/"
	}
	if strings.HasPrefix(path, prefix+"/") {
		return strings.TrimPrefix(path, prefix)
	}
	return path
}
