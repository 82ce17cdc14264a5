package amf3

import (
	"encoding/binary"
	"math"
)

// Writer accumulates the big-endian AMF3 wire bytes for one encode call.
// Operations are symmetric with Reader's.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated bytes. The slice is owned by the Writer;
// copy it before calling Reset if the caller needs to keep it past the next
// write.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Reset empties the buffer, returning its backing array to the pool it was
// allocated from (if any) and fetching a fresh tier-sized one sized for the
// next message.
func (w *Writer) Reset() {
	old := w.buf
	w.buf = allocBuf(cap(old))
	freeBuf(old)
}

// WriteByte appends a single byte.
func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

// WriteBytes appends raw bytes verbatim.
func (w *Writer) WriteBytes(p []byte) error {
	w.buf = append(w.buf, p...)
	return nil
}

// WriteUTF8 appends the raw UTF-8 bytes of s with no length prefix; callers
// that need a length-prefixed string use WriteU29 first.
func (w *Writer) WriteUTF8(s string) error {
	w.buf = append(w.buf, s...)
	return nil
}

// WriteU16BE appends a big-endian uint16.
func (w *Writer) WriteU16BE(v uint16) error {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
	return nil
}

// WriteI16BE appends a big-endian int16.
func (w *Writer) WriteI16BE(v int16) error {
	return w.WriteU16BE(uint16(v))
}

// WriteU32BE appends a big-endian uint32.
func (w *Writer) WriteU32BE(v uint32) error {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
	return nil
}

// WriteI32BE appends a big-endian int32.
func (w *Writer) WriteI32BE(v int32) error {
	return w.WriteU32BE(uint32(v))
}

// WriteF64BE appends a big-endian IEEE-754 double.
func (w *Writer) WriteF64BE(v float64) error {
	w.buf = binary.BigEndian.AppendUint64(w.buf, math.Float64bits(v))
	return nil
}

// WriteU29 encodes value (already masked to 29 bits by the caller where
// needed) as the variable-length U29 form from spec.md §4.1.
func (w *Writer) WriteU29(value uint32) error {
	switch {
	case value < 0x80:
		return w.WriteByte(byte(value))
	case value < 0x4000:
		return w.writeAll(
			byte(value>>7)|0x80,
			byte(value&0x7F),
		)
	case value < 0x200000:
		return w.writeAll(
			byte(value>>14)|0x80,
			byte((value>>7)&0x7F)|0x80,
			byte(value&0x7F),
		)
	case value < 0x20000000:
		return w.writeAll(
			byte(value>>22)|0x80,
			byte((value>>15)&0x7F)|0x80,
			byte((value>>8)&0x7F)|0x80,
			byte(value),
		)
	default:
		return ErrOutOfRange
	}
}

// WriteAMFHeader encodes the {is_def, value} pair every referencable wire
// type leads with (spec.md §4.1), the inverse of Reader.AMFHeader.
func (w *Writer) WriteAMFHeader(isDef bool, value uint32) error {
	raw := value << 1
	if isDef {
		raw |= 1
	}
	return w.WriteU29(raw)
}

func (w *Writer) writeAll(bs ...byte) error {
	w.buf = append(w.buf, bs...)
	return nil
}
