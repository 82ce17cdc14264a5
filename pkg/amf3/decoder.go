package amf3

// Decoder reads tagged AMF3 values from a byte buffer, maintaining the
// three reference tables described in spec.md §4.5: previously decoded
// non-empty strings, previously decoded complex values (registered before
// their body is parsed so cyclic back-references resolve), and inline
// traits.
type Decoder struct {
	r *Reader

	stringRefs []string
	objectRefs []any
	traitRefs  []Trait
}

// NewDecoder wraps buf with the cursor at 0 and empty reference tables.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{r: NewReader(buf)}
}

// Position returns the current read cursor.
func (d *Decoder) Position() int { return d.r.Position() }

// SetPosition moves the read cursor.
func (d *Decoder) SetPosition(n int) error { return d.r.SetPosition(n) }

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return d.r.Remaining() }

// Decode reads one tagged AMF3 value and returns a host value: primitives
// surface as their natural Go type (bool, int32, float64, string, nil for
// null), complex values surface as the corresponding pointer Value type
// (*Date, *DenseArray, *AssocArray, *Object, *ByteArray, the Vector types,
// *Dictionary) so their identity can be shared by later references.
func (d *Decoder) Decode() (any, error) {
	marker, err := d.r.U8()
	if err != nil {
		return nil, err
	}
	switch marker {
	case markerUndefined:
		return Undefined{}, nil
	case markerNull:
		return nil, nil
	case markerFalse:
		return false, nil
	case markerTrue:
		return true, nil
	case markerInteger:
		return d.decodeInteger()
	case markerDouble:
		return d.decodeDouble()
	case markerString:
		return d.decodeString()
	case markerDate:
		return d.decodeDate()
	case markerArray:
		return d.decodeArray()
	case markerObject:
		return d.decodeObject()
	case markerByteArray:
		return d.decodeByteArray()
	case markerVectorInt:
		return d.decodeVectorInt()
	case markerVectorUInt:
		return d.decodeVectorUInt()
	case markerVectorDbl:
		return d.decodeVectorDouble()
	case markerVectorObj:
		return d.decodeVectorObject()
	case markerDictionary:
		return d.decodeDictionary()
	default:
		return nil, ErrUnsupportedType
	}
}

func (d *Decoder) decodeInteger() (any, error) {
	raw, err := d.r.U29()
	if err != nil {
		return nil, err
	}
	return signExtend29(raw), nil
}

func signExtend29(raw uint32) int32 {
	if raw&(1<<28) != 0 {
		return int32(raw) - (1 << 29)
	}
	return int32(raw)
}

func (d *Decoder) decodeDouble() (any, error) {
	return d.r.F64BE()
}

func (d *Decoder) decodeString() (any, error) {
	return d.readInlineString()
}

// readInlineString reads one header-prefixed UTF-8 string shared by top
// level String values, object/array keys, and trait class/field names. The
// empty string is the literal is_def=true, value=0 form and is never
// registered or looked up in string_refs (Invariant 5).
func (d *Decoder) readInlineString() (string, error) {
	h, err := d.r.AMFHeader()
	if err != nil {
		return "", err
	}
	if !h.IsDef {
		idx := int(h.Value)
		if idx < 0 || idx >= len(d.stringRefs) {
			return "", ErrInvalidReference
		}
		return d.stringRefs[idx], nil
	}
	if h.Value == 0 {
		return "", nil
	}
	s, err := d.r.UTF8(int(h.Value))
	if err != nil {
		return "", err
	}
	d.stringRefs = append(d.stringRefs, s)
	return s, nil
}

// readHeaderOrRef reads the leading AMFHeader of a referencable type. When
// is_def is false it resolves the reference immediately; callers only
// continue to their type-specific inline body when isRef is false.
func (d *Decoder) readHeaderOrRef() (h AMFHeader, ref any, isRef bool, err error) {
	h, err = d.r.AMFHeader()
	if err != nil {
		return AMFHeader{}, nil, false, err
	}
	if !h.IsDef {
		idx := int(h.Value)
		if idx < 0 || idx >= len(d.objectRefs) {
			return AMFHeader{}, nil, false, ErrInvalidReference
		}
		return AMFHeader{}, d.objectRefs[idx], true, nil
	}
	return h, nil, false, nil
}

func (d *Decoder) registerRef(v any) int {
	idx := len(d.objectRefs)
	d.objectRefs = append(d.objectRefs, v)
	return idx
}

func (d *Decoder) decodeDate() (any, error) {
	_, ref, isRef, err := d.readHeaderOrRef()
	if err != nil {
		return nil, err
	}
	if isRef {
		return ref, nil
	}
	dt := &Date{}
	d.registerRef(dt)
	millis, err := d.r.F64BE()
	if err != nil {
		return nil, err
	}
	dt.Millis = millis
	return dt, nil
}

func (d *Decoder) decodeByteArray() (any, error) {
	h, ref, isRef, err := d.readHeaderOrRef()
	if err != nil {
		return nil, err
	}
	if isRef {
		return ref, nil
	}
	ba := &ByteArray{}
	d.registerRef(ba)
	b, err := d.r.Bytes(int(h.Value))
	if err != nil {
		return nil, err
	}
	ba.Bytes = append([]byte(nil), b...)
	return ba, nil
}

// decodeArray implements spec.md §9's documented associative-array
// asymmetry: if any named fields are read, the dense part is skipped
// entirely even though its length was announced. The registered slot
// starts out as the dense-array placeholder (the only shape known before
// any body is read) and is corrected in place once the final shape is
// known; a value that self-references during the associative-pairs phase
// of its own decode therefore resolves through the placeholder rather than
// the final AssocArray — an accepted, narrow gap.
func (d *Decoder) decodeArray() (any, error) {
	h, ref, isRef, err := d.readHeaderOrRef()
	if err != nil {
		return nil, err
	}
	if isRef {
		return ref, nil
	}
	container := &DenseArray{}
	idx := d.registerRef(container)

	var assoc []Field
	for {
		key, err := d.readInlineString()
		if err != nil {
			return nil, err
		}
		if key == "" {
			break
		}
		val, err := d.Decode()
		if err != nil {
			return nil, err
		}
		assoc = append(assoc, Field{Name: key, Value: wrapValue(val)})
	}

	var result any
	if len(assoc) > 0 {
		result = &AssocArray{Items: assoc}
	} else {
		items := make([]Value, 0, h.Value)
		for i := uint32(0); i < h.Value; i++ {
			val, err := d.Decode()
			if err != nil {
				return nil, err
			}
			items = append(items, wrapValue(val))
		}
		container.Items = items
		result = container
	}
	d.objectRefs[idx] = result
	return result, nil
}

func (d *Decoder) decodeObject() (any, error) {
	h, ref, isRef, err := d.readHeaderOrRef()
	if err != nil {
		return nil, err
	}
	if isRef {
		return ref, nil
	}
	obj := &Object{}
	idx := d.registerRef(obj)

	trait, err := d.readOrDefineTrait(h.Value)
	if err != nil {
		return nil, err
	}
	obj.ClassName = trait.ClassName
	obj.Dynamic = trait.Dynamic
	obj.Externalizable = trait.Externalizable

	if trait.Externalizable {
		if trait.ClassName == "flex.messaging.io.ArrayCollection" {
			inner, err := d.Decode()
			if err != nil {
				return nil, err
			}
			d.objectRefs[idx] = inner
			return inner, nil
		}
		reader, found := lookupExternalizable(trait.ClassName)
		if !found {
			return nil, ErrUnregisteredExternalizable
		}
		result, err := reader(d)
		if err != nil {
			return nil, err
		}
		d.objectRefs[idx] = result
		return result, nil
	}

	staticFields := make([]Field, 0, len(trait.StaticFieldNames))
	for _, name := range trait.StaticFieldNames {
		val, err := d.Decode()
		if err != nil {
			return nil, err
		}
		staticFields = append(staticFields, Field{Name: name, Value: wrapValue(val)})
	}
	obj.StaticFields = staticFields

	if trait.Dynamic {
		var dynFields []Field
		for {
			key, err := d.readInlineString()
			if err != nil {
				return nil, err
			}
			if key == "" {
				break
			}
			val, err := d.Decode()
			if err != nil {
				return nil, err
			}
			dynFields = append(dynFields, Field{Name: key, Value: wrapValue(val)})
		}
		obj.DynamicFields = dynFields
	}
	return obj, nil
}

// readOrDefineTrait interprets value as the trait header bits from
// spec.md §4.5: bit 0 selects a trait_refs index (shifted by 1) vs. an
// inline definition, whose own bit 1 is externalizable, bit 2 is dynamic,
// and remaining bits (shifted by 3) count the static field names.
func (d *Decoder) readOrDefineTrait(value uint32) (Trait, error) {
	if value&traitBitInline == 0 {
		idx := int(value >> 1)
		if idx < 0 || idx >= len(d.traitRefs) {
			return Trait{}, ErrInvalidReference
		}
		return d.traitRefs[idx], nil
	}
	ext := value&traitBitExternalizable != 0
	dyn := value&traitBitDynamic != 0
	count := value >> traitHeaderShift

	className, err := d.readInlineString()
	if err != nil {
		return Trait{}, err
	}
	names := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		n, err := d.readInlineString()
		if err != nil {
			return Trait{}, err
		}
		names = append(names, n)
	}
	trait := Trait{ClassName: className, Dynamic: dyn, Externalizable: ext, StaticFieldNames: names}
	d.traitRefs = append(d.traitRefs, trait)
	return trait, nil
}

func (d *Decoder) decodeVectorInt() (any, error) {
	h, ref, isRef, err := d.readHeaderOrRef()
	if err != nil {
		return nil, err
	}
	if isRef {
		return ref, nil
	}
	v := &VectorInt{}
	d.registerRef(v)
	fixed, err := d.r.U8()
	if err != nil {
		return nil, err
	}
	v.Fixed = fixed != 0
	items := make([]int32, 0, h.Value)
	for i := uint32(0); i < h.Value; i++ {
		n, err := d.r.I32BE()
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	v.Items = items
	return v, nil
}

func (d *Decoder) decodeVectorUInt() (any, error) {
	h, ref, isRef, err := d.readHeaderOrRef()
	if err != nil {
		return nil, err
	}
	if isRef {
		return ref, nil
	}
	v := &VectorUInt{}
	d.registerRef(v)
	fixed, err := d.r.U8()
	if err != nil {
		return nil, err
	}
	v.Fixed = fixed != 0
	items := make([]uint32, 0, h.Value)
	for i := uint32(0); i < h.Value; i++ {
		n, err := d.r.U32BE()
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	v.Items = items
	return v, nil
}

func (d *Decoder) decodeVectorDouble() (any, error) {
	h, ref, isRef, err := d.readHeaderOrRef()
	if err != nil {
		return nil, err
	}
	if isRef {
		return ref, nil
	}
	v := &VectorDouble{}
	d.registerRef(v)
	fixed, err := d.r.U8()
	if err != nil {
		return nil, err
	}
	v.Fixed = fixed != 0
	items := make([]float64, 0, h.Value)
	for i := uint32(0); i < h.Value; i++ {
		n, err := d.r.F64BE()
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	v.Items = items
	return v, nil
}

func (d *Decoder) decodeVectorObject() (any, error) {
	h, ref, isRef, err := d.readHeaderOrRef()
	if err != nil {
		return nil, err
	}
	if isRef {
		return ref, nil
	}
	v := &VectorObject{}
	d.registerRef(v)
	fixed, err := d.r.U8()
	if err != nil {
		return nil, err
	}
	v.Fixed = fixed != 0
	items := make([]Value, 0, h.Value)
	for i := uint32(0); i < h.Value; i++ {
		val, err := d.Decode()
		if err != nil {
			return nil, err
		}
		items = append(items, wrapValue(val))
	}
	v.Items = items
	return v, nil
}

// decodeDictionary keeps dictionary keys as their decoded Value rather
// than stringifying non-string keys, the stricter side of spec.md §9's
// "Dictionary key coercion" open question (see DESIGN.md).
func (d *Decoder) decodeDictionary() (any, error) {
	h, ref, isRef, err := d.readHeaderOrRef()
	if err != nil {
		return nil, err
	}
	if isRef {
		return ref, nil
	}
	dict := &Dictionary{}
	d.registerRef(dict)
	weak, err := d.r.U8()
	if err != nil {
		return nil, err
	}
	dict.WeakKeys = weak != 0
	entries := make([]DictEntry, 0, h.Value)
	for i := uint32(0); i < h.Value; i++ {
		key, err := d.Decode()
		if err != nil {
			return nil, err
		}
		val, err := d.Decode()
		if err != nil {
			return nil, err
		}
		entries = append(entries, DictEntry{Key: wrapValue(key), Val: wrapValue(val)})
	}
	dict.Entries = entries
	return dict, nil
}
