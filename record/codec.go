package record

import "encoding/binary"

// EncodedSize is the fixed wire width of one Element: a 32-bit key, a
// 32-bit aux field, and the opaque value payload, all little-endian per
// spec.md §6. The reference implementation's 9-byte layout (u32 key || u32
// aux || 1 terminator byte) assumed an empty payload; this codebase's
// payload is ValueBytes wide, so the terminator byte is dropped in favor of
// a layout whose length is self-describing from ValueBytes alone.
const EncodedSize = 4 + 4 + ValueBytes

// Encode writes e into dst, which must be at least EncodedSize bytes.
func Encode(dst []byte, e Element) {
	binary.LittleEndian.PutUint32(dst[0:4], e.Key)
	binary.LittleEndian.PutUint32(dst[4:8], e.Aux)
	copy(dst[8:EncodedSize], e.Value[:])
}

// Decode reads an Element out of src, which must be at least EncodedSize
// bytes.
func Decode(src []byte) Element {
	var e Element
	e.Key = binary.LittleEndian.Uint32(src[0:4])
	e.Aux = binary.LittleEndian.Uint32(src[4:8])
	copy(e.Value[:], src[8:EncodedSize])
	return e
}
