package iso8583

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// Bitmap tracks field presence for the ISO8583 64-bit primary and 64-bit
// secondary bitmaps. Bit k, counted from the most significant bit of the
// first byte, stands for field k in the primary vector and for field k+64
// in the secondary vector.
//
// Bit 1 is never stored: it is derived from the secondary vector being non-empty.
type Bitmap struct {
	primary   [BitmapSize]byte
	secondary [BitmapSize]byte
}

func bitPosition(fieldNum int) (byteIndex int, mask byte) {
	idx := (fieldNum - 1) % 64
	return idx / 8, 0x80 >> (idx % 8)
}

// Mark sets the presence bit for fieldNum (2-128). Fields above 64 land in
// the secondary vector, which implicitly raises bit 1.
func (bm *Bitmap) Mark(fieldNum int) error {
	if fieldNum < 2 || fieldNum > MaxFieldNumber {
		return errors.Wrapf(ErrInvalidField, "cannot mark field %d", fieldNum)
	}

	i, mask := bitPosition(fieldNum)
	if fieldNum <= 64 {
		bm.primary[i] |= mask
	} else {
		bm.secondary[i] |= mask
	}
	return nil
}

// Contains reports whether fieldNum is present. Contains(1) is true exactly
// when at least one field in 65-128 is present.
func (bm *Bitmap) Contains(fieldNum int) bool {
	switch {
	case fieldNum == 1:
		return bm.HasSecondary()
	case fieldNum < 1 || fieldNum > MaxFieldNumber:
		return false
	}

	i, mask := bitPosition(fieldNum)
	if fieldNum <= 64 {
		return bm.primary[i]&mask != 0
	}
	return bm.secondary[i]&mask != 0
}

// HasSecondary reports whether the secondary bitmap would be written.
func (bm *Bitmap) HasSecondary() bool {
	for _, b := range bm.secondary {
		if b != 0 {
			return true
		}
	}
	return false
}

// Present returns the set field numbers in ascending order, without field 1.
func (bm *Bitmap) Present() []int {
	fields := make([]int, 0, 16)
	for fieldNum := 2; fieldNum <= MaxFieldNumber; fieldNum++ {
		if bm.Contains(fieldNum) {
			fields = append(fields, fieldNum)
		}
	}
	return fields
}

// Len returns the number of present fields, not counting field 1.
func (bm *Bitmap) Len() int {
	n := 0
	for fieldNum := 2; fieldNum <= MaxFieldNumber; fieldNum++ {
		if bm.Contains(fieldNum) {
			n++
		}
	}
	return n
}

// WireSize returns the number of bytes AppendWire writes.
func (bm *Bitmap) WireSize(encoding BitmapEncoding) int {
	size := BitmapSize
	if bm.HasSecondary() {
		size += BitmapSize
	}
	if encoding == BitmapHex {
		size *= 2
	}
	return size
}

// AppendWire appends the primary vector, and the secondary vector when
// bit 1 is set, to dst.
func (bm *Bitmap) AppendWire(dst []byte, encoding BitmapEncoding) []byte {
	primary := bm.primary
	hasSecondary := bm.HasSecondary()
	if hasSecondary {
		primary[0] |= 0x80
	}

	dst = appendVector(dst, primary[:], encoding)
	if hasSecondary {
		dst = appendVector(dst, bm.secondary[:], encoding)
	}
	return dst
}

func appendVector(dst, vector []byte, encoding BitmapEncoding) []byte {
	if encoding != BitmapHex {
		return append(dst, vector...)
	}
	start := len(dst)
	dst = append(dst, make([]byte, len(vector)*2)...)
	encodeHexUpper(dst[start:], vector)
	return dst
}

// ParseBitmap reads a primary vector from data and, if its bit 1 is set, a
// secondary vector after it. It returns the bitmap and the bytes consumed.
func ParseBitmap(data []byte, encoding BitmapEncoding) (Bitmap, int, error) {
	var bm Bitmap

	size := BitmapSize
	if encoding == BitmapHex {
		size *= 2
	}

	if err := readVector(bm.primary[:], data, size, encoding); err != nil {
		return Bitmap{}, 0, errors.Wrap(err, "primary bitmap")
	}
	offset := size

	wireSecondary := bm.primary[0]&0x80 != 0
	bm.primary[0] &^= 0x80

	if wireSecondary {
		if err := readVector(bm.secondary[:], data[offset:], size, encoding); err != nil {
			return Bitmap{}, 0, errors.Wrap(err, "secondary bitmap")
		}
		offset += size
	}
	return bm, offset, nil
}

func readVector(dst, data []byte, size int, encoding BitmapEncoding) error {
	if len(data) < size {
		return errors.Wrapf(ErrMalformedBitmap, "need %d bytes, have %d", size, len(data))
	}
	if encoding != BitmapHex {
		copy(dst, data[:size])
		return nil
	}
	if _, err := hex.Decode(dst, data[:size]); err != nil {
		return errors.Wrapf(ErrMalformedBitmap, "bad hex: %v", err)
	}
	return nil
}
