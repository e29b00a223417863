// Package schema holds the resolved, inlined schema tree produced by the
// spec index, and the validator that checks a decoded JSON value against
// one such tree.
package schema

// Kind tags the variant a Schema node holds.
type Kind int

const (
	KindObject Kind = iota
	KindArray
	KindString
	KindInteger
	KindNumber
	KindBoolean
	KindNull
	KindAllOf
	KindAnyOf
	KindUnsupported
	// KindPending marks a schema node whose $ref could not be resolved at
	// compile time. It is a first-class, reachable node anywhere in a
	// tree (not just at the top of a ResponseEntry): resolution failures
	// inside nested properties/items/branches surface the same way.
	// Validating against it always yields MissingSchemaDefinition.
	KindPending
)

// Property is one named member of an KindObject schema, kept in document
// order so validation failures are reported deterministically.
type Property struct {
	Name   string
	Schema Schema
}

// Schema is a resolved schema tree node. Exactly one set of fields is
// meaningful depending on Kind; the rest are zero.
type Schema struct {
	Kind Kind

	// KindObject
	Required   []string
	Properties []Property

	// KindArray
	Items    *Schema
	MaxItems *int

	// KindAllOf / KindAnyOf
	Branches []Schema

	// KindUnsupported
	Reason string
}

func Object(required []string, properties []Property) Schema {
	return Schema{Kind: KindObject, Required: required, Properties: properties}
}

func Array(items Schema, maxItems *int) Schema {
	return Schema{Kind: KindArray, Items: &items, MaxItems: maxItems}
}

func AllOf(branches []Schema) Schema { return Schema{Kind: KindAllOf, Branches: branches} }
func AnyOf(branches []Schema) Schema { return Schema{Kind: KindAnyOf, Branches: branches} }

func Unsupported(reason string) Schema { return Schema{Kind: KindUnsupported, Reason: reason} }

// Pending marks an unresolved $ref; refName is kept for diagnostics.
func Pending(refName string) Schema { return Schema{Kind: KindPending, Reason: refName} }

var (
	String  = Schema{Kind: KindString}
	Integer = Schema{Kind: KindInteger}
	Number  = Schema{Kind: KindNumber}
	Boolean = Schema{Kind: KindBoolean}
	Null    = Schema{Kind: KindNull}
)

// Property looks up a named property, in document order.
func (s Schema) Property(name string) (Schema, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return Schema{}, false
}

// MergeAllOf combines the required lists and property sets of object
// branches left to right: a name's first occurrence wins. A Pending or
// Unsupported branch anywhere in the list (an unresolved $ref or an
// unsupported keyword) takes over the whole merge instead of being
// silently dropped, in document order, so the deferred-error signal it
// carries still reaches validation time. Other non-object branches
// (AllOf of non-objects is not meaningfully mergeable under the rules
// we implement) are skipped.
func MergeAllOf(branches []Schema) Schema {
	for _, b := range branches {
		if b.Kind == KindPending || b.Kind == KindUnsupported {
			return b
		}
	}

	var required []string
	var props []Property
	seenReq := map[string]bool{}
	seenProp := map[string]bool{}
	for _, b := range branches {
		if b.Kind != KindObject {
			continue
		}
		for _, r := range b.Required {
			if !seenReq[r] {
				seenReq[r] = true
				required = append(required, r)
			}
		}
		for _, p := range b.Properties {
			if !seenProp[p.Name] {
				seenProp[p.Name] = true
				props = append(props, p)
			}
		}
	}
	return Object(required, props)
}
