package iso8583

import (
	"bytes"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/pkg/errors"
)

func TestBitmapMark(t *testing.T) {
	tests := []struct {
		name       string
		fields     []int
		wantWire   []byte
		wantSecond bool
	}{
		{
			name:     "field 2 only",
			fields:   []int{2},
			wantWire: []byte{0x40, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:     "field 64 stays primary",
			fields:   []int{64},
			wantWire: []byte{0, 0, 0, 0, 0, 0, 0, 0x01},
		},
		{
			name:       "field 65 is secondary bit 1",
			fields:     []int{65},
			wantWire:   []byte{0x80, 0, 0, 0, 0, 0, 0, 0, 0x80, 0, 0, 0, 0, 0, 0, 0},
			wantSecond: true,
		},
		{
			name:       "fields 2 and 70",
			fields:     []int{2, 70},
			wantWire:   []byte{0xC0, 0, 0, 0, 0, 0, 0, 0, 0x04, 0, 0, 0, 0, 0, 0, 0},
			wantSecond: true,
		},
		{
			name:       "field 128",
			fields:     []int{128},
			wantWire:   []byte{0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01},
			wantSecond: true,
		},
	}

	for _, test := range tests {
		var bm Bitmap
		for _, f := range test.fields {
			if err := bm.Mark(f); err != nil {
				t.Fatalf("[TestBitmapMark](%s): Mark(%d): %v", test.name, f, err)
			}
		}

		got := bm.AppendWire(nil, BitmapBinary)
		if !bytes.Equal(got, test.wantWire) {
			t.Errorf("[TestBitmapMark](%s): wire = % X, want % X", test.name, got, test.wantWire)
		}
		if bm.Contains(1) != test.wantSecond {
			t.Errorf("[TestBitmapMark](%s): Contains(1) = %v, want %v", test.name, bm.Contains(1), test.wantSecond)
		}
		if diff := pretty.Compare(test.fields, bm.Present()); diff != "" {
			t.Errorf("[TestBitmapMark](%s): Present() -want +got:\n%s", test.name, diff)
		}
		if bm.WireSize(BitmapBinary) != len(test.wantWire) {
			t.Errorf("[TestBitmapMark](%s): WireSize = %d, want %d", test.name, bm.WireSize(BitmapBinary), len(test.wantWire))
		}
	}
}

func TestBitmapMarkInvalid(t *testing.T) {
	for _, f := range []int{-1, 0, 1, 129} {
		var bm Bitmap
		if err := bm.Mark(f); !errors.Is(err, ErrInvalidField) {
			t.Errorf("[TestBitmapMarkInvalid](%d): got %v, want ErrInvalidField", f, err)
		}
		if bm.Len() != 0 || bm.Contains(1) {
			t.Errorf("[TestBitmapMarkInvalid](%d): bitmap changed", f)
		}
	}
}

func TestBitmapHex(t *testing.T) {
	var bm Bitmap
	_ = bm.Mark(2)
	_ = bm.Mark(70)

	got := bm.AppendWire(nil, BitmapHex)
	want := "C0000000000000000400000000000000"
	if string(got) != want {
		t.Fatalf("[TestBitmapHex]: wire = %s, want %s", got, want)
	}

	parsed, n, err := ParseBitmap(got, BitmapHex)
	if err != nil {
		t.Fatalf("[TestBitmapHex]: ParseBitmap: %v", err)
	}
	if n != 32 {
		t.Errorf("[TestBitmapHex]: consumed %d, want 32", n)
	}
	if diff := pretty.Compare([]int{2, 70}, parsed.Present()); diff != "" {
		t.Errorf("[TestBitmapHex]: -want +got:\n%s", diff)
	}
}

func TestParseBitmap(t *testing.T) {
	secondaryOnly := append([]byte{0x80, 0, 0, 0, 0, 0, 0, 0}, make([]byte, 8)...)

	tests := []struct {
		name       string
		data       []byte
		encoding   BitmapEncoding
		wantFields []int
		wantN      int
		wantSecond bool
		wantErr    bool
	}{
		{
			name:       "primary only with trailing field data",
			data:       []byte{0x72, 0x38, 0, 0, 0, 0, 0, 0, '1', '2'},
			wantFields: []int{2, 3, 4, 7, 11, 12, 13},
			wantN:      8,
		},
		{
			name:       "secondary",
			data:       []byte{0xC0, 0, 0, 0, 0, 0, 0, 0, 0x04, 0, 0, 0, 0, 0, 0, 0},
			wantFields: []int{2, 70},
			wantN:      16,
			wantSecond: true,
		},
		{
			name:       "bit 1 with empty secondary is accepted",
			data:       secondaryOnly,
			wantFields: []int{},
			wantN:      16,
		},
		{
			name:    "short primary",
			data:    []byte{0x40, 0},
			wantErr: true,
		},
		{
			name:    "missing secondary",
			data:    []byte{0x80, 0, 0, 0, 0, 0, 0, 0},
			wantErr: true,
		},
		{
			name:     "bad hex",
			data:     []byte("ZZ00000000000000"),
			encoding: BitmapHex,
			wantErr:  true,
		},
	}

	for _, test := range tests {
		bm, n, err := ParseBitmap(test.data, test.encoding)
		switch {
		case test.wantErr && err == nil:
			t.Errorf("[TestParseBitmap](%s): got err == nil, want err != nil", test.name)
			continue
		case !test.wantErr && err != nil:
			t.Errorf("[TestParseBitmap](%s): got err == %s, want err == nil", test.name, err)
			continue
		case err != nil:
			if !errors.Is(err, ErrMalformedBitmap) {
				t.Errorf("[TestParseBitmap](%s): got %v, want ErrMalformedBitmap", test.name, err)
			}
			continue
		}

		if n != test.wantN {
			t.Errorf("[TestParseBitmap](%s): consumed %d, want %d", test.name, n, test.wantN)
		}
		if bm.Contains(1) != test.wantSecond {
			t.Errorf("[TestParseBitmap](%s): Contains(1) = %v, want %v", test.name, bm.Contains(1), test.wantSecond)
		}
		if diff := pretty.Compare(test.wantFields, bm.Present()); diff != "" {
			t.Errorf("[TestParseBitmap](%s): -want +got:\n%s", test.name, diff)
		}
	}
}
