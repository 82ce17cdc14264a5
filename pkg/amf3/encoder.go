package amf3

import (
	"sort"
	"strings"
	"time"
)

// Encoder appends tagged AMF3 values to a growing byte buffer, maintaining
// the three reference tables described in spec.md §4.4: encoded non-empty
// strings, encoded complex values (compared by identity where the host
// value has one), and inline traits (deduplicated structurally — see
// DESIGN.md's note on trait identity, an intentional divergence from the
// source, which never shares traits).
type Encoder struct {
	w *Writer

	stringRefs map[string]int
	objectRefs map[any]int
	refCount   int

	traitIndex map[string]int
	traitList  []Trait

	filter FieldFilter
}

// NewEncoder returns a fresh encoder with an empty writer and empty
// reference tables.
func NewEncoder() *Encoder {
	return &Encoder{
		w:          NewWriter(),
		stringRefs: map[string]int{},
		objectRefs: map[any]int{},
		traitIndex: map[string]int{},
	}
}

// Buffer materializes the bytes accumulated so far.
func (e *Encoder) Buffer() []byte {
	return e.w.Bytes()
}

// SetFieldFilter installs f as the hook consulted for every object and
// associative-array field before it is serialized (spec.md §4.2's field
// filter). Fields whose name starts with "__" are excluded regardless of
// what f returns. A nil filter (the default) serializes every other field.
func (e *Encoder) SetFieldFilter(f FieldFilter) {
	e.filter = f
}

// Clear resets the writer and all three reference tables so the encoder can
// be reused for an unrelated message.
func (e *Encoder) Clear() {
	e.w.Reset()
	e.stringRefs = map[string]int{}
	e.objectRefs = map[any]int{}
	e.refCount = 0
	e.traitIndex = map[string]int{}
	e.traitList = nil
}

// Encode appends the fully tagged representation of v: a type byte followed
// by its body, recursing into nested values as needed.
func (e *Encoder) Encode(v any) error {
	switch vv := v.(type) {
	case rawValue:
		return e.Encode(vv.v)
	case *VectorInt:
		return e.encodeVectorInt(vv)
	case *VectorUInt:
		return e.encodeVectorUInt(vv)
	case *VectorDouble:
		return e.encodeVectorDouble(vv)
	case *VectorObject:
		return e.encodeVectorObject(vv)
	case *Dictionary:
		return e.encodeDictionary(vv)
	case ForcedType:
		if !forcedTypeSupported(vv.Type) {
			return ErrUnsupportedType
		}
		return e.encodeWire(vv.Type, vv.Value)
	}
	wt, err := infer(v)
	if err != nil {
		return err
	}
	return e.encodeWire(wt, v)
}

func forcedTypeSupported(t WireType) bool {
	switch t {
	case WireUndefined, WireNull, WireFalse, WireTrue, WireInteger, WireDouble,
		WireString, WireDate, WireArray, WireAssocArray, WireObject, WireByteArray:
		return true
	}
	return false
}

func (e *Encoder) encodeWire(wt WireType, value any) error {
	switch wt {
	case WireUndefined:
		return e.w.WriteByte(markerUndefined)
	case WireNull:
		return e.w.WriteByte(markerNull)
	case WireFalse:
		return e.w.WriteByte(markerFalse)
	case WireTrue:
		return e.w.WriteByte(markerTrue)
	case WireInteger:
		return e.encodeInteger(value)
	case WireDouble:
		return e.encodeDouble(value)
	case WireString:
		return e.encodeStringValue(value)
	case WireDate:
		return e.encodeDate(value)
	case WireArray:
		return e.encodeDenseArray(value)
	case WireAssocArray:
		return e.encodeAssocArray(value)
	case WireObject:
		return e.encodeObject(value)
	case WireByteArray:
		return e.encodeByteArray(value)
	}
	return ErrUnsupportedType
}

func (e *Encoder) encodeInteger(value any) error {
	f, ok := asFloat64(value)
	if !ok {
		return ErrUnsupportedValue
	}
	if f < minInteger || f > maxInteger {
		return ErrOutOfRange
	}
	if err := e.w.WriteByte(markerInteger); err != nil {
		return err
	}
	return e.w.WriteU29(uint32(int32(f)) & 0x1FFFFFFF)
}

func (e *Encoder) encodeDouble(value any) error {
	f, ok := asFloat64(value)
	if !ok {
		return ErrUnsupportedValue
	}
	if err := e.w.WriteByte(markerDouble); err != nil {
		return err
	}
	return e.w.WriteF64BE(f)
}

func (e *Encoder) encodeStringValue(value any) error {
	s, ok := asString(value)
	if !ok {
		return ErrUnsupportedValue
	}
	if err := e.w.WriteByte(markerString); err != nil {
		return err
	}
	return e.writeInlineString(s)
}

// writeInlineString is the single primitive behind every UTF-8 string
// written to the wire — top-level String values, object/array field keys,
// class names, static field names — since spec.md's string reference table
// is keyed on stream-order occurrence regardless of where the string
// appears (Invariant 1). The empty string is never registered or looked up
// (Invariant 5).
func (e *Encoder) writeInlineString(s string) error {
	if s == "" {
		return e.w.WriteAMFHeader(true, 0)
	}
	if idx, ok := e.stringRefs[s]; ok {
		return e.w.WriteAMFHeader(false, uint32(idx))
	}
	e.stringRefs[s] = len(e.stringRefs)
	if err := e.w.WriteAMFHeader(true, uint32(len(s))); err != nil {
		return err
	}
	return e.w.WriteUTF8(s)
}

// refKey returns the map key used to detect a repeated complex value by
// identity, or nil when value has no stable Go identity (a plain map or
// slice) — such values are still registered in the table (to keep later
// reference indices correct) but can never be the target of a reference.
func refKey(value any) any {
	switch value.(type) {
	case *Date, *ByteArray, *DenseArray, *AssocArray, *Object, *NamedObject,
		*VectorInt, *VectorUInt, *VectorDouble, *VectorObject, *Dictionary:
		return value
	default:
		return nil
	}
}

// withObjectRef writes marker, then either a reference to a previously
// registered occurrence of value or a fresh registration followed by
// writeBody — which is responsible for writing its own leading AMFHeader.
func (e *Encoder) withObjectRef(value any, marker byte, writeBody func() error) error {
	if err := e.w.WriteByte(marker); err != nil {
		return err
	}
	key := refKey(value)
	if key != nil {
		if idx, ok := e.objectRefs[key]; ok {
			return e.w.WriteAMFHeader(false, uint32(idx))
		}
	}
	idx := e.refCount
	e.refCount++
	if key != nil {
		e.objectRefs[key] = idx
	}
	return writeBody()
}

func (e *Encoder) encodeDate(value any) error {
	millis, ok := asMillis(value)
	if !ok {
		return ErrUnsupportedValue
	}
	return e.withObjectRef(value, markerDate, func() error {
		if err := e.w.WriteAMFHeader(true, 0); err != nil {
			return err
		}
		return e.w.WriteF64BE(millis)
	})
}

func (e *Encoder) encodeByteArray(value any) error {
	b, ok := asBytes(value)
	if !ok {
		return ErrUnsupportedValue
	}
	return e.withObjectRef(value, markerByteArray, func() error {
		if err := e.w.WriteAMFHeader(true, uint32(len(b))); err != nil {
			return err
		}
		return e.w.WriteBytes(b)
	})
}

func (e *Encoder) encodeDenseArray(value any) error {
	items, ok := asDenseItems(value)
	if !ok {
		return ErrUnsupportedValue
	}
	return e.withObjectRef(value, markerArray, func() error {
		if err := e.w.WriteAMFHeader(true, uint32(len(items))); err != nil {
			return err
		}
		if err := e.writeInlineString(""); err != nil {
			return err
		}
		for _, it := range items {
			if err := e.Encode(it); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Encoder) encodeAssocArray(value any) error {
	fields, ok := asAssocFields(value)
	if !ok {
		return ErrUnsupportedValue
	}
	fields = e.filterFields(fields)
	return e.withObjectRef(value, markerArray, func() error {
		if err := e.w.WriteAMFHeader(true, 0); err != nil {
			return err
		}
		for _, f := range fields {
			if err := e.writeInlineString(f.Name); err != nil {
				return err
			}
			if err := e.Encode(f.Value); err != nil {
				return err
			}
		}
		return e.writeInlineString("")
	})
}

func (e *Encoder) encodeObject(value any) error {
	className, dynamic, externalizable, staticFields, dynamicFields, write, ok := decomposeObject(value)
	if !ok {
		return ErrUnsupportedValue
	}
	anonymous := className == "" && !externalizable && len(staticFields) == 0 && dynamic
	return e.withObjectRef(value, markerObject, func() error {
		if anonymous {
			return e.writeAnonymousObjectBody(dynamicFields)
		}
		return e.writeTypedObjectBody(className, dynamic, externalizable, staticFields, write)
	})
}

func (e *Encoder) writeAnonymousObjectBody(fields []Field) error {
	val, isNew := e.traitHeaderValue(Trait{Dynamic: true})
	if err := e.w.WriteAMFHeader(true, val); err != nil {
		return err
	}
	if isNew {
		if err := e.writeInlineString(""); err != nil {
			return err
		}
	}
	for _, f := range e.filterFields(fields) {
		if err := e.writeInlineString(f.Name); err != nil {
			return err
		}
		if err := e.Encode(f.Value); err != nil {
			return err
		}
	}
	return e.writeInlineString("")
}

func (e *Encoder) writeTypedObjectBody(className string, dynamic, externalizable bool, staticFields []Field, write func(*Encoder) error) error {
	staticFields = e.filterFields(staticFields)
	names := make([]string, len(staticFields))
	for i, f := range staticFields {
		names[i] = f.Name
	}
	trait := Trait{ClassName: className, Dynamic: dynamic, Externalizable: externalizable, StaticFieldNames: names}
	val, isNew := e.traitHeaderValue(trait)
	if err := e.w.WriteAMFHeader(true, val); err != nil {
		return err
	}
	if isNew {
		if err := e.writeInlineString(className); err != nil {
			return err
		}
		for _, n := range names {
			if err := e.writeInlineString(n); err != nil {
				return err
			}
		}
	}
	if externalizable {
		if write == nil {
			return ErrUnsupportedValue
		}
		return write(e)
	}
	for _, f := range staticFields {
		if err := e.Encode(f.Value); err != nil {
			return err
		}
	}
	if dynamic {
		return e.writeInlineString("")
	}
	return nil
}

// traitHeaderValue returns the AMFHeader.Value to write for t (spec.md
// §4.5's trait-bit layout) and whether t is being defined for the first
// time in this encode call. A structurally identical trait seen before
// collapses to a reference — a deliberate divergence from the source
// (which never shares traits) permitted by spec.md §9, kept decodable by
// the symmetric decoder logic.
func (e *Encoder) traitHeaderValue(t Trait) (value uint32, isNew bool) {
	key := traitKey(t)
	if idx, ok := e.traitIndex[key]; ok {
		return uint32(idx) << 1, false
	}
	idx := len(e.traitList)
	e.traitIndex[key] = idx
	e.traitList = append(e.traitList, t)

	v := uint32(traitBitInline)
	if t.Externalizable {
		v |= traitBitExternalizable
	}
	if t.Dynamic {
		v |= traitBitDynamic
	}
	v |= uint32(len(t.StaticFieldNames)) << traitHeaderShift
	return v, true
}

func traitKey(t Trait) string {
	var b strings.Builder
	b.WriteString(t.ClassName)
	b.WriteByte(0)
	if t.Dynamic {
		b.WriteByte('d')
	}
	if t.Externalizable {
		b.WriteByte('e')
	}
	b.WriteByte(0)
	b.WriteString(strings.Join(t.StaticFieldNames, "\x00"))
	return b.String()
}

func (e *Encoder) encodeVectorInt(v *VectorInt) error {
	return e.withObjectRef(v, markerVectorInt, func() error {
		if err := e.w.WriteAMFHeader(true, uint32(len(v.Items))); err != nil {
			return err
		}
		if err := e.w.WriteByte(boolByte(v.Fixed)); err != nil {
			return err
		}
		for _, it := range v.Items {
			if err := e.w.WriteI32BE(it); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Encoder) encodeVectorUInt(v *VectorUInt) error {
	return e.withObjectRef(v, markerVectorUInt, func() error {
		if err := e.w.WriteAMFHeader(true, uint32(len(v.Items))); err != nil {
			return err
		}
		if err := e.w.WriteByte(boolByte(v.Fixed)); err != nil {
			return err
		}
		for _, it := range v.Items {
			if err := e.w.WriteU32BE(it); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Encoder) encodeVectorDouble(v *VectorDouble) error {
	return e.withObjectRef(v, markerVectorDbl, func() error {
		if err := e.w.WriteAMFHeader(true, uint32(len(v.Items))); err != nil {
			return err
		}
		if err := e.w.WriteByte(boolByte(v.Fixed)); err != nil {
			return err
		}
		for _, it := range v.Items {
			if err := e.w.WriteF64BE(it); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Encoder) encodeVectorObject(v *VectorObject) error {
	return e.withObjectRef(v, markerVectorObj, func() error {
		if err := e.w.WriteAMFHeader(true, uint32(len(v.Items))); err != nil {
			return err
		}
		if err := e.w.WriteByte(boolByte(v.Fixed)); err != nil {
			return err
		}
		for _, it := range v.Items {
			if err := e.Encode(it); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Encoder) encodeDictionary(v *Dictionary) error {
	return e.withObjectRef(v, markerDictionary, func() error {
		if err := e.w.WriteAMFHeader(true, uint32(len(v.Entries))); err != nil {
			return err
		}
		if err := e.w.WriteByte(boolByte(v.WeakKeys)); err != nil {
			return err
		}
		for _, ent := range v.Entries {
			if err := e.Encode(ent.Key); err != nil {
				return err
			}
			if err := e.Encode(ent.Val); err != nil {
				return err
			}
		}
		return nil
	})
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func asString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case Str:
		return string(v), true
	}
	return "", false
}

func asBytes(value any) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		return v, true
	case *ByteArray:
		return v.Bytes, true
	}
	return nil, false
}

func asMillis(value any) (float64, bool) {
	switch v := value.(type) {
	case *Date:
		return v.Millis, true
	case time.Time:
		return float64(v.UnixNano()) / 1e6, true
	}
	return 0, false
}

func asDenseItems(value any) ([]any, bool) {
	switch v := value.(type) {
	case *DenseArray:
		out := make([]any, len(v.Items))
		for i, it := range v.Items {
			out[i] = it
		}
		return out, true
	case []any:
		return v, true
	case []Value:
		out := make([]any, len(v))
		for i, it := range v {
			out[i] = it
		}
		return out, true
	}
	return nil, false
}

func asAssocFields(value any) ([]Field, bool) {
	switch v := value.(type) {
	case *AssocArray:
		return v.Items, true
	case []Field:
		return v, true
	}
	return nil, false
}

func decomposeObject(value any) (className string, dynamic, externalizable bool, staticFields, dynamicFields []Field, write func(*Encoder) error, ok bool) {
	switch v := value.(type) {
	case *Object:
		return v.ClassName, v.Dynamic, v.Externalizable, v.StaticFields, v.DynamicFields, nil, true
	case *NamedObject:
		if v.Externalizable {
			return v.ClassName, v.Dynamic, true, nil, nil, v.Write, true
		}
		return v.ClassName, v.Dynamic, false, v.Fields, nil, nil, true
	case map[string]any:
		return "", true, false, nil, mapToSortedFields(v), nil, true
	}
	if fe, ok := value.(FieldEnumerator); ok {
		return "", true, false, nil, fe.SerializableFields(), nil, true
	}
	return "", false, false, nil, nil, nil, false
}

func mapToSortedFields(m map[string]any) []Field {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	fields := make([]Field, 0, len(names))
	for _, n := range names {
		fields = append(fields, Field{Name: n, Value: wrapValue(m[n])})
	}
	return fields
}

// wrapValue lets Field.Value hold a plain Go value alongside Value trees: a
// value that already implements Value is returned as is, anything else is
// boxed in rawValue, which Encode unwraps again.
func wrapValue(v any) Value {
	if val, ok := v.(Value); ok {
		return val
	}
	return rawValue{v}
}

// unwrapValue reverses wrapValue for callers (the FieldFilter hook) that want
// the original host value rather than its Value-tree box.
func unwrapValue(v Value) any {
	if raw, ok := v.(rawValue); ok {
		return raw.v
	}
	return v
}

// rawValue adapts an arbitrary host value so it can sit in a Field.Value
// slot; Encode unwraps it back to the original value before inference.
type rawValue struct{ v any }

func (rawValue) amf3Value() {}

// filterFields drops "__"-prefixed fields unconditionally, then consults the
// encoder's FieldFilter (if one was installed via SetFieldFilter) for
// everything else — spec.md §4.2/§6's field-filter configuration row. The
// filter is handed the field's unwrapped host value, not its rawValue box.
func (e *Encoder) filterFields(fields []Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if hasDoubleUnderscorePrefix(f.Name) {
			continue
		}
		if e.filter != nil && !e.filter(f.Name, unwrapValue(f.Value)) {
			continue
		}
		out = append(out, f)
	}
	return out
}
