package types

import (
	"fmt"
	"iter"
	"reflect"
)

// Form is the structural category of a stored parameter value.
type Form string

// Form constants. The value and v-* forms carry a type name from the
// fixed vocabulary below; reference, representation, and r-* forms carry
// an open, caller-declared type name.
const (
	// FormValue is a concrete scalar.
	FormValue Form = "value"
	// FormVSet is a set of scalars of uniform type.
	FormVSet Form = "v-set"
	// FormVSequence is an ordered sequence of scalars of uniform type.
	FormVSequence Form = "v-sequence"
	// FormReference is a pointer-by-key to another parameter; the stored
	// value is the target key's name.
	FormReference Form = "reference"
	// FormRepresentation is a single pre-rendered string of a declared type.
	FormRepresentation Form = "representation"
	// FormRSet is a set of pre-rendered strings of a declared type.
	FormRSet Form = "r-set"
	// FormRSequence is an ordered sequence of pre-rendered strings of a
	// declared type.
	FormRSequence Form = "r-sequence"
)

// Fixed type vocabulary for value and v-* forms.
const (
	TypeBoolean    = "boolean"
	TypeInteger    = "integer"
	TypeRational   = "rational"
	TypeString     = "string"
	TypeOctets     = "octets"
	TypeVoid       = "void"
	TypeParameters = "parameters"
)

// Reserved value type names assigned by the explicit setter overrides.
const (
	// TypeExcluded marks an entry that must never be transmitted.
	TypeExcluded = "excluded"
	// TypeIdentifier marks an identifier-typed string.
	TypeIdentifier = "identifier"
	// TypeSystemFile marks a filesystem-path-typed string.
	TypeSystemFile = "system-file-path"
)

// Descriptor is the (form, type) pair produced by classification and
// stored alongside every parameter value. Downstream serializers encode
// the value from the descriptor alone, without re-inspecting it.
type Descriptor struct {
	Form Form   `msgpack:"form" json:"form"`
	Type string `msgpack:"type" json:"type"`
}

// Specification is the fully-qualified export view of one parameter:
// form, type, addressing key, and the value or representation.
// This is the canonical hand-off format for serializers.
type Specification struct {
	Form  Form
	Type  string
	Key   string
	Value any
}

// Pair is a key/value input whose descriptor is inferred by Classify.
type Pair struct {
	Key   string
	Value any
}

// Entry pairs a descriptor with its stored value. Returned by the
// replacing setters so callers can observe what was overwritten.
type Entry struct {
	Descriptor Descriptor
	Value      any
}

// Set is an unordered collection of scalar members. Values of this type
// classify to the v-set form; member order is never significant.
type Set map[any]struct{}

// NewSet builds a Set from the given members.
func NewSet(members ...any) Set {
	s := make(Set, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

// valueKinds maps scalar underlying kinds to their type names, used by
// the named-subtype scan after the exact fast path and the collection
// probe have both missed.
var valueKinds = map[reflect.Kind]string{
	reflect.Bool:    TypeBoolean,
	reflect.Int:     TypeInteger,
	reflect.Int8:    TypeInteger,
	reflect.Int16:   TypeInteger,
	reflect.Int32:   TypeInteger,
	reflect.Int64:   TypeInteger,
	reflect.Uint:    TypeInteger,
	reflect.Uint8:   TypeInteger,
	reflect.Uint16:  TypeInteger,
	reflect.Uint32:  TypeInteger,
	reflect.Uint64:  TypeInteger,
	reflect.Float32: TypeRational,
	reflect.Float64: TypeRational,
	reflect.String:  TypeString,
	reflect.Map:     TypeParameters,
}

// scalarType is the classification fast path: exact scalar kinds only.
func scalarType(v any) (string, bool) {
	switch v.(type) {
	case nil:
		return TypeVoid, true
	case bool:
		return TypeBoolean, true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInteger, true
	case float32, float64:
		return TypeRational, true
	case string:
		return TypeString, true
	case []byte:
		return TypeOctets, true
	case map[string]any, *Parameters:
		// Mapping-valued parameters are opaque scalars; the classifier
		// never recurses into them.
		return TypeParameters, true
	}
	return "", false
}

// Classify selects a descriptor for the given value.
//
// The algorithm is total over the supported vocabulary and never
// defaults silently:
//
//  1. Exact scalar kinds (including nil and mappings) classify as a
//     value form immediately.
//  2. Sets, slices, and arrays classify from their first element, which
//     must itself classify as a scalar; collections of collections are
//     unsupported. Empty collections fail with ErrAmbiguousEmpty.
//  3. Named types with a scalar underlying kind classify as the
//     corresponding value form.
//
// Anything else fails with ErrUnclassifiable.
func Classify(v any) (Descriptor, error) {
	if t, ok := scalarType(v); ok {
		return Descriptor{Form: FormValue, Type: t}, nil
	}

	if s, ok := v.(Set); ok {
		for member := range s {
			elem, err := Classify(member)
			if err != nil {
				return Descriptor{}, err
			}
			if elem.Form != FormValue {
				return Descriptor{}, fmt.Errorf("%w: set of %s elements", ErrUnclassifiable, elem.Form)
			}
			return Descriptor{Form: FormVSet, Type: elem.Type}, nil
		}
		return Descriptor{}, ErrAmbiguousEmpty
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return Descriptor{}, ErrAmbiguousEmpty
		}
		elem, err := Classify(rv.Index(0).Interface())
		if err != nil {
			return Descriptor{}, err
		}
		if elem.Form != FormValue {
			return Descriptor{}, fmt.Errorf("%w: sequence of %s elements", ErrUnclassifiable, elem.Form)
		}
		return Descriptor{Form: FormVSequence, Type: elem.Type}, nil
	default:
	}

	// Named scalar subtypes: classify by underlying kind.
	if t, ok := valueKinds[rv.Kind()]; ok {
		return Descriptor{Form: FormValue, Type: t}, nil
	}

	return Descriptor{}, fmt.Errorf("%w: %T", ErrUnclassifiable, v)
}

// entry is the stored (descriptor, value) pair for one key.
type entry struct {
	desc  Descriptor
	value any
}

// Parameters is a mutable finite map from key to descriptor-tagged
// value. Iteration order is insertion order; replacing a key via Set or
// SetRepresentation moves it to the end, matching the replacement
// semantics of the setters.
//
// A Parameters instance is exclusively owned by the record embedding
// it. Access from multiple goroutines must be serialized externally.
type Parameters struct {
	keys    []string
	entries map[string]entry
}

// NewParameters creates an empty parameter store.
func NewParameters() *Parameters {
	return &Parameters{entries: make(map[string]entry)}
}

// ParametersFromPairs creates a store from key/value pairs, classifying
// each value. Fails on the first unclassifiable value.
func ParametersFromPairs(pairs []Pair) (*Parameters, error) {
	p := NewParameters()
	if err := p.Update(pairs); err != nil {
		return nil, err
	}
	return p, nil
}

// ParametersFromSpecifications creates a store from fully-qualified
// specifications. No classification is performed; the caller's
// descriptors are trusted as-is. This is the ingestion path for
// deserialized parameter sets.
func ParametersFromSpecifications(specs []Specification) *Parameters {
	p := NewParameters()
	for _, s := range specs {
		p.assign(s.Key, entry{desc: Descriptor{Form: s.Form, Type: s.Type}, value: s.Value})
	}
	return p
}

// assign stores an entry, preserving the key's position when it
// already exists.
func (p *Parameters) assign(key string, e entry) {
	if _, ok := p.entries[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.entries[key] = e
}

// replace removes any prior entry for key and stores e at the end of
// the iteration order, returning the displaced entry.
func (p *Parameters) replace(key string, e entry) (Entry, bool) {
	prev, existed := p.entries[key]
	if existed {
		for i, k := range p.keys {
			if k == key {
				p.keys = append(p.keys[:i], p.keys[i+1:]...)
				break
			}
		}
	}
	p.keys = append(p.keys, key)
	p.entries[key] = e
	return Entry{Descriptor: prev.desc, Value: prev.value}, existed
}

// Set classifies value and stores it under key, fully replacing any
// prior entry. The displaced entry is returned when one existed.
func (p *Parameters) Set(key string, value any) (Entry, bool, error) {
	d, err := Classify(value)
	if err != nil {
		return Entry{}, false, err
	}
	prev, existed := p.replace(key, entry{desc: d, value: value})
	return prev, existed, nil
}

// Update classifies and stores every pair. Existing keys keep their
// position in the iteration order.
func (p *Parameters) Update(pairs []Pair) error {
	for _, pr := range pairs {
		d, err := Classify(pr.Value)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", pr.Key, err)
		}
		p.assign(pr.Key, entry{desc: d, value: pr.Value})
	}
	return nil
}

// SetExcluded stores a value that must not be included in any
// transmission of the parameters. Serializers recognize the reserved
// (value, excluded) descriptor and skip the entry.
func (p *Parameters) SetExcluded(key string, value any) {
	p.assign(key, entry{desc: Descriptor{Form: FormValue, Type: TypeExcluded}, value: value})
}

// SetReference stores key as a reference to the parameter identified by
// target, returning the target's resolved type name. The descriptor is
// fixed at call time; later changes to the target do not update it, and
// the target's continued existence is not re-validated on read.
func (p *Parameters) SetReference(key, target string) (string, error) {
	t, ok := p.entries[target]
	if !ok {
		return "", fmt.Errorf("%w: reference target %q", ErrNoParameter, target)
	}
	p.assign(key, entry{desc: Descriptor{Form: FormReference, Type: t.desc.Type}, value: target})
	return t.desc.Type, nil
}

// SetIdentifier stores value as an identifier-typed string, bypassing
// classification.
func (p *Parameters) SetIdentifier(key, value string) {
	p.assign(key, entry{desc: Descriptor{Form: FormValue, Type: TypeIdentifier}, value: value})
}

// SetSystemFile stores value as a filesystem path, bypassing
// classification.
func (p *Parameters) SetSystemFile(key, value string) {
	p.assign(key, entry{desc: Descriptor{Form: FormValue, Type: TypeSystemFile}, value: value})
}

// SetRepresentation stores a single pre-rendered string of the declared
// type, fully replacing any prior entry for key. Retrieval always gives
// the represented form; transports convert it back to a value on
// reception when the type is recognized. Use this to circumvent the
// conversion a transport's serialization side would otherwise apply.
func (p *Parameters) SetRepresentation(typ, key, value string) (Entry, bool) {
	return p.replace(key, entry{desc: Descriptor{Form: FormRepresentation, Type: typ}, value: value})
}

// SetRepresentationSet stores a new set built from strings, typed by the
// caller's declared type and formed as r-set.
func (p *Parameters) SetRepresentationSet(typ, key string, strings []string) {
	s := make(Set, len(strings))
	for _, v := range strings {
		s[v] = struct{}{}
	}
	p.assign(key, entry{desc: Descriptor{Form: FormRSet, Type: typ}, value: s})
}

// SetRepresentationSequence stores a new sequence copied from strings,
// typed by the caller's declared type and formed as r-sequence.
func (p *Parameters) SetRepresentationSequence(typ, key string, strings []string) {
	seq := make([]string, len(strings))
	copy(seq, strings)
	p.assign(key, entry{desc: Descriptor{Form: FormRSequence, Type: typ}, value: seq})
}

// Get returns the stored value for key. Represented values are not
// interpreted; only the subject is returned.
func (p *Parameters) Get(key string) (any, error) {
	e, ok := p.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoParameter, key)
	}
	return e.value, nil
}

// Select yields the stored values identified by keys, in the order keys
// is given. Each lookup fails independently: a missing key yields
// ErrNoParameter for that position and iteration continues.
func (p *Parameters) Select(keys []string) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for _, k := range keys {
			e, ok := p.entries[k]
			if !ok {
				if !yield(nil, fmt.Errorf("%w: %q", ErrNoParameter, k)) {
					return
				}
				continue
			}
			if !yield(e.value, nil) {
				return
			}
		}
	}
}

// Keys returns the parameter names in iteration order.
func (p *Parameters) Keys() []string {
	keys := make([]string, len(p.keys))
	copy(keys, p.keys)
	return keys
}

// Len returns the number of stored parameters.
func (p *Parameters) Len() int {
	return len(p.entries)
}

// IsEmpty reports whether the store has no parameters.
func (p *Parameters) IsEmpty() bool {
	return len(p.entries) == 0
}

// Specifications yields the fully-qualified specification of every
// parameter in iteration order. This is the canonical export view for
// serializers.
func (p *Parameters) Specifications() iter.Seq[Specification] {
	return func(yield func(Specification) bool) {
		for _, k := range p.keys {
			e := p.entries[k]
			if !yield(Specification{Form: e.desc.Form, Type: e.desc.Type, Key: k, Value: e.value}) {
				return
			}
		}
	}
}

// Equal reports whether both stores hold the same key to
// (descriptor, value) mapping. Insertion order is not significant, and
// neither is the concrete slice type of a sequence value: a sequence
// stored as []int holds the same parameter value as its wire round
// trip decoded into []any.
func (p *Parameters) Equal(o *Parameters) bool {
	if p == nil || o == nil {
		return p == o
	}
	if len(p.entries) != len(o.entries) {
		return false
	}
	for k, e := range p.entries {
		oe, ok := o.entries[k]
		if !ok || e.desc != oe.desc {
			return false
		}
		if !valueEqual(e.desc.Form, e.value, oe.value) {
			return false
		}
	}
	return true
}

// valueEqual compares two stored values under the same descriptor.
// Sequence forms compare element-wise; everything else structurally.
func valueEqual(form Form, a, b any) bool {
	switch form {
	case FormVSequence, FormRSequence:
		return sequenceEqual(a, b)
	default:
		return reflect.DeepEqual(a, b)
	}
}

func sequenceEqual(a, b any) bool {
	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if !isSequenceKind(av) || !isSequenceKind(bv) {
		return reflect.DeepEqual(a, b)
	}
	if av.Len() != bv.Len() {
		return false
	}
	for i := range av.Len() {
		if !reflect.DeepEqual(av.Index(i).Interface(), bv.Index(i).Interface()) {
			return false
		}
	}
	return true
}

func isSequenceKind(v reflect.Value) bool {
	return v.IsValid() && (v.Kind() == reflect.Slice || v.Kind() == reflect.Array)
}
