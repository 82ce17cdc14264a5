package amf3

// Value is the tagged variant every decoded AMF3 value implements. Encode
// also accepts these directly so a decoded tree round-trips without any
// conversion step; see infer.go for how plain Go values get mapped onto the
// same set.
type Value interface{ amf3Value() }

// Undefined is AMF3's undefined value (marker 0x00).
type Undefined struct{}

func (Undefined) amf3Value() {}

// Null is AMF3's null value (marker 0x01). Decode also surfaces AMF3 null as
// a plain Go nil for convenience; Null only appears when a caller wants to
// round-trip a Value tree without going through the `any` surface.
type Null struct{}

func (Null) amf3Value() {}

// Boolean is AMF3's false/true value (markers 0x02/0x03).
type Boolean bool

func (Boolean) amf3Value() {}

// Integer is a 29-bit signed AMF3 integer (marker 0x04), always within
// [-2^28, 2^28-1].
type Integer int32

func (Integer) amf3Value() {}

// Double is an IEEE-754 AMF3 double (marker 0x05).
type Double float64

func (Double) amf3Value() {}

// Str is an AMF3 string (marker 0x06). Named to avoid colliding with the
// builtin `string` conversion rules on decode's `any` return value.
type Str string

func (Str) amf3Value() {}

// Date is an AMF3 date (marker 0x08): milliseconds since the Unix epoch,
// with no time zone. Complex/referencable, so it is always handled as a
// pointer.
type Date struct {
	Millis float64
}

func (*Date) amf3Value() {}

// ByteArray is an AMF3 byte array (marker 0x0C).
type ByteArray struct {
	Bytes []byte
}

func (*ByteArray) amf3Value() {}

// Field is one (name, value) pair of an object's static/dynamic fields or an
// associative array's entries. Kept as an explicit ordered slice rather than
// a map because spec.md's invariants (and the golden-byte tests) depend on
// stream order, which Go's map iteration cannot reproduce.
type Field struct {
	Name  string
	Value Value
}

// DenseArray is an AMF3 array with no associative part (marker 0x09, dense
// form).
type DenseArray struct {
	Items []Value
}

func (*DenseArray) amf3Value() {}

// AssocArray is an AMF3 array with a zero dense length and only associative
// entries (marker 0x09, associative form).
type AssocArray struct {
	Items []Field
}

func (*AssocArray) amf3Value() {}

// Trait describes an object's class surface. Traits are values, not
// identities: the encoder may still choose to deduplicate structurally
// identical traits into a shared trait reference (spec.md §9 permits this),
// but two separately-built Trait values are never treated as "the same
// trait" purely because they happen to be equal — only the encoder's
// explicit dedup pass does that, and only within one encode call.
type Trait struct {
	ClassName        string
	Dynamic          bool
	Externalizable   bool
	StaticFieldNames []string
}

// Object is an AMF3 object (marker 0x0A): a trait plus its static and
// dynamic field values. Anonymous objects have an empty ClassName.
//
// Encode asymmetry (spec.md §9 "Dynamic fields after static"): the encoder
// only emits DynamicFields when the object is the anonymous, dynamic, zero-
// static-field, non-externalizable shape (ClassName == "", Dynamic, no
// StaticFields, not Externalizable). Any other object is encoded via the
// typed trait path, which carries the Dynamic flag in its trait but never
// emits dynamic fields: a dynamic typed object's body ends with the empty
// dynamic-field terminator right after its static values. Decode has no
// such limitation and always parses dynamic fields when the trait's dynamic
// bit is set.
type Object struct {
	ClassName      string
	Dynamic        bool
	Externalizable bool
	StaticFields   []Field
	DynamicFields  []Field
}

func (*Object) amf3Value() {}

// VectorInt is an AMF3 Vector.<int> (marker 0x0D).
type VectorInt struct {
	Items []int32
	Fixed bool
}

func (*VectorInt) amf3Value() {}

// VectorUInt is an AMF3 Vector.<uint> (marker 0x0E).
type VectorUInt struct {
	Items []uint32
	Fixed bool
}

func (*VectorUInt) amf3Value() {}

// VectorDouble is an AMF3 Vector.<Number> (marker 0x0F).
type VectorDouble struct {
	Items []float64
	Fixed bool
}

func (*VectorDouble) amf3Value() {}

// VectorObject is an AMF3 Vector.<*> (marker 0x10).
type VectorObject struct {
	Items []Value
	Fixed bool
}

func (*VectorObject) amf3Value() {}

// DictEntry is one key/value pair of a Dictionary. Keys keep their original
// decoded Value rather than being stringified, diverging from the lossy
// JSON-like rendering the source falls back to (spec.md §9 "Dictionary key
// coercion" flags this as an open question; this module takes the stricter,
// structure-preserving side of it — see DESIGN.md).
type DictEntry struct {
	Key Value
	Val Value
}

// Dictionary is an AMF3 Dictionary (marker 0x11).
type Dictionary struct {
	Entries  []DictEntry
	WeakKeys bool
}

func (*Dictionary) amf3Value() {}

// WireType names the wire-level type inference selects (spec.md §4.3) or a
// ForcedType overrides.
type WireType int

const (
	WireUndefined WireType = iota
	WireNull
	WireFalse
	WireTrue
	WireInteger
	WireDouble
	WireString
	WireDate
	WireArray      // dense array
	WireAssocArray // associative array
	WireObject
	WireByteArray
)

// ForcedType wraps a host value to override type inference for that one
// value. It is transparent after inference: Value is emitted using Type,
// whatever inference would otherwise have chosen.
//
// Only the wire types reachable through ordinary inference are supported
// here (spec.md §9 "ForcedType coverage gap"): vectors and dictionaries
// cannot be forced this way and encoding a ForcedType naming them fails with
// ErrUnsupportedType. Pass a *VectorInt/*VectorUInt/*VectorDouble/
// *VectorObject/*Dictionary value to Encode directly instead — those types
// are unambiguous and do not need inference at all.
type ForcedType struct {
	Value any
	Type  WireType
}

// FieldFilter selects which fields of an object or associative array
// participate in serialization. Fields whose name begins with "__" are
// always excluded regardless of what the filter returns. A nil filter
// serializes every other field.
type FieldFilter func(name string, value any) bool

// NamedObject is the host-facing escape hatch for producing a typed (or
// explicitly non-dynamic anonymous) object without building an *Object by
// hand. Dynamic == false on an otherwise anonymous object (ClassName == "")
// forces the encoder down the typed, non-dynamic path with an empty class
// name (trait marker 0x03 plus an empty body), per spec.md §4.2.
type NamedObject struct {
	ClassName      string
	Dynamic        bool
	Externalizable bool
	Fields         []Field

	// Write serializes the body of an externalizable object. Required when
	// Externalizable is true; ignored otherwise.
	Write func(e *Encoder) error
}

// FieldEnumerator lets a host value override default field enumeration
// ("get_serializable_fields()" in spec.md §6's configuration table).
type FieldEnumerator interface {
	SerializableFields() []Field
}

func hasDoubleUnderscorePrefix(name string) bool {
	return len(name) >= 2 && name[0] == '_' && name[1] == '_'
}
