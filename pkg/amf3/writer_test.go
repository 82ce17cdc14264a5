package amf3

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteU29(t *testing.T) {
	cases := []struct {
		name  string
		input uint32
		want  []byte
	}{
		{"zero", 0x00, []byte{0x00}},
		{"one_byte_max", 0x7F, []byte{0x7F}},
		{"two_byte_min", 0x80, []byte{0x81, 0x00}},
		{"two_byte_max", 0x3FFF, []byte{0xFF, 0x7F}},
		{"three_byte_min", 0x4000, []byte{0x81, 0x80, 0x00}},
		{"three_byte_max", 0x1FFFFF, []byte{0xFF, 0xFF, 0x7F}},
		{"four_byte_min", 0x200000, []byte{0x80, 0xC0, 0x80, 0x00}},
		{"four_byte_max", 0x1FFFFFFF, []byte{0xFF, 0xFF, 0xFF, 0xFF}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWriter()
			require.NoError(t, w.WriteU29(tc.input))
			require.Equal(t, tc.want, w.Bytes())
		})
	}
}

func TestWriteU29_OutOfRange(t *testing.T) {
	w := NewWriter()
	err := w.WriteU29(0x40000000)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestWriteU29_OutOfRange_JustAboveMax(t *testing.T) {
	w := NewWriter()
	err := w.WriteU29(0x20000000)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestWriteAMFHeader(t *testing.T) {
	cases := []struct {
		name  string
		isDef bool
		value uint32
		want  []byte
	}{
		{"empty_string_header", true, 0, []byte{0x01}},
		{"anonymous_trait", true, anonymousTraitValueForTest, []byte{0x0B}},
		{"reference_zero", false, 0, []byte{0x00}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWriter()
			require.NoError(t, w.WriteAMFHeader(tc.isDef, tc.value))
			require.Equal(t, tc.want, w.Bytes())
		})
	}
}

// anonymousTraitValueForTest mirrors the bit combination writeAnonymousObjectBody
// builds internally (traitBitInline | traitBitDynamic), spelled out locally so
// this test doesn't depend on encoder.go internals.
const anonymousTraitValueForTest = traitBitInline | traitBitDynamic

func TestWriteF64BE(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteF64BE(1.5))
	require.Equal(t, []byte{0x3F, 0xF8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, w.Bytes())
}

func TestWriterReset(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteByte(0x01))
	w.Reset()
	require.Equal(t, 0, w.Len())
}
