package amf3

// AMF0 type markers. AMF0 support is out of scope for this codec; the
// enumeration is kept, unused, because the source this was distilled from
// carries it the same way — a leftover marker table with no parser behind
// it. AvmPlusMarker is the AMF0 escape that hands a message off to AMF3.
const (
	amf0NumberMarker      = 0x00
	amf0BooleanMarker     = 0x01
	amf0StringMarker      = 0x02
	amf0ObjectMarker      = 0x03
	amf0MovieClipMarker   = 0x04 // reserved, not supported
	amf0NullMarker        = 0x05
	amf0UndefinedMarker   = 0x06
	amf0ReferenceMarker   = 0x07
	amf0ECMAArrayMarker   = 0x08
	amf0ObjectEndMarker   = 0x09
	amf0StrictArrayMarker = 0x0A
	amf0DateMarker        = 0x0B
	amf0LongStringMarker  = 0x0C
	amf0UnsupportedMarker = 0x0D
	amf0RecordSetMarker   = 0x0E // reserved, not supported
	amf0XMLDocumentMarker = 0x0F
	amf0TypedObjectMarker = 0x10
	amf0AvmPlusMarker     = 0x11
)

// AMF3 type markers (spec.md §4.5 dispatch table).
const (
	markerUndefined  = 0x00
	markerNull       = 0x01
	markerFalse      = 0x02
	markerTrue       = 0x03
	markerInteger    = 0x04
	markerDouble     = 0x05
	markerString     = 0x06
	markerXMLDoc     = 0x07
	markerDate       = 0x08
	markerArray      = 0x09
	markerObject     = 0x0A
	markerXML        = 0x0B
	markerByteArray  = 0x0C
	markerVectorInt  = 0x0D
	markerVectorUInt = 0x0E
	markerVectorDbl  = 0x0F
	markerVectorObj  = 0x10
	markerDictionary = 0x11
)

// Trait header bit layout, operating on an object AMFHeader's already-shifted
// Value field (spec.md §4.5 Object): bit 0 selects inline trait vs. a
// trait_refs index, bit 1 is externalizable, bit 2 is dynamic, the remaining
// upper bits carry either a trait-table index (when bit 0 is clear) or a
// static field count (when bit 0 is set).
//
// This is one bit position short of the raw U29 written to the wire, which
// additionally carries the object's own AMFHeader is_def bit at bit 0 — see
// Writer.WriteAMFHeader and Encoder.traitHeaderValue. An anonymous, dynamic,
// zero-static-field trait (traitBitInline|traitBitDynamic as the
// AMFHeader.Value, is_def=true) produces the raw U29 0x0B from spec.md's S5
// worked example.
const (
	traitBitInline         = 1 << 0
	traitBitExternalizable = 1 << 1
	traitBitDynamic        = 1 << 2
	traitHeaderShift       = 3
)
