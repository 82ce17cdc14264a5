package amf3

import "errors"

// Error taxonomy. Each is terminal for the in-flight encode/decode call;
// reference tables are discarded along with the call that produced them.
var (
	// ErrUnexpectedEnd is returned when a read would advance the cursor past
	// the end of the buffer.
	ErrUnexpectedEnd = errors.New("amf3: unexpected end of buffer")

	// ErrOutOfRange is returned when a U29 encode input falls outside
	// [-2^28, 2^28-1], or a vector element falls outside its int32/uint32
	// range.
	ErrOutOfRange = errors.New("amf3: value out of range")

	// ErrUnsupportedType is returned for an unknown wire tag on decode, or a
	// ForcedType wire type the encoder does not implement.
	ErrUnsupportedType = errors.New("amf3: unsupported wire type")

	// ErrUnsupportedValue is returned when type inference cannot map a host
	// value to any wire type.
	ErrUnsupportedValue = errors.New("amf3: unsupported value")

	// ErrInvalidReference is returned when a reference index points outside
	// its table. The kind of the referenced slot is not checked: a reference
	// resolves to whatever value occupies that slot, even one of another
	// wire type.
	ErrInvalidReference = errors.New("amf3: invalid reference")

	// ErrUnregisteredExternalizable is returned when an externalizable
	// object's class name has no registered reader.
	ErrUnregisteredExternalizable = errors.New("amf3: unregistered externalizable class")

	// ErrMalformedTrait names trait header bits that are inconsistent with
	// the data that follows. The decoder does not return it: such input
	// surfaces as the ErrUnexpectedEnd or ErrInvalidReference of the read
	// that fails.
	ErrMalformedTrait = errors.New("amf3: malformed trait")
)
