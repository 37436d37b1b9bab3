package iso8583

import (
	"log/slog"
	"testing"
	"time"

	"github.com/kylelemons/godebug/pretty"
	"github.com/pkg/errors"
)

func mustMessage(t *testing.T, opts ...MessageOption) *Message {
	t.Helper()
	m, err := NewMessage(opts...)
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	return m
}

func TestSetRejectsFieldNumbers(t *testing.T) {
	m := mustMessage(t)
	for _, n := range []int{0, 1, 129} {
		if err := m.Set(n, Binary(make([]byte, 8))); !errors.Is(err, ErrInvalidField) {
			t.Errorf("[TestSetRejectsFieldNumbers](%d): got %v, want ErrInvalidField", n, err)
		}
	}
	if m.Has(1) || len(m.Fields()) != 0 {
		t.Errorf("[TestSetRejectsFieldNumbers]: message was modified")
	}
}

func TestSetFailureLeavesMessageUnchanged(t *testing.T) {
	m := mustMessage(t, WithMTI(MTIFinancialRequest), WithField(11, NumericFromInt(123)))

	if err := m.SetInt(11, 1234567); !errors.Is(err, ErrDigitOverflow) {
		t.Fatalf("[TestSetFailureLeavesMessageUnchanged]: got %v, want ErrDigitOverflow", err)
	}
	if err := m.SetString(70, "ABC"); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("[TestSetFailureLeavesMessageUnchanged]: got %v, want ErrTypeMismatch", err)
	}

	d, err := m.Decimal(11)
	if err != nil || d.IntPart() != 123 {
		t.Errorf("[TestSetFailureLeavesMessageUnchanged]: field 11 = %v, %v; want 123", d, err)
	}
	if diff := pretty.Compare([]int{11}, m.Fields()); diff != "" {
		t.Errorf("[TestSetFailureLeavesMessageUnchanged]: -want +got:\n%s", diff)
	}
	if m.Has(1) || m.Has(70) {
		t.Errorf("[TestSetFailureLeavesMessageUnchanged]: failed set changed the bitmap")
	}
}

func TestSetOverwrites(t *testing.T) {
	m := mustMessage(t)
	_ = m.SetString(39, "05")
	if err := m.SetString(39, "00"); err != nil {
		t.Fatalf("[TestSetOverwrites]: %v", err)
	}
	if got, _ := m.String(39); got != "00" {
		t.Errorf("[TestSetOverwrites]: got %q, want 00", got)
	}
}

func TestSecondaryPresence(t *testing.T) {
	m := mustMessage(t)
	if m.Has(1) {
		t.Fatalf("[TestSecondaryPresence]: empty message has bit 1")
	}
	_ = m.SetInt(3, 0)
	if m.Has(1) {
		t.Errorf("[TestSecondaryPresence]: primary field raised bit 1")
	}
	_ = m.SetInt(70, 301)
	if !m.Has(1) {
		t.Errorf("[TestSecondaryPresence]: field 70 did not raise bit 1")
	}
	if diff := pretty.Compare([]int{3, 70}, m.Fields()); diff != "" {
		t.Errorf("[TestSecondaryPresence]: -want +got:\n%s", diff)
	}
}

func TestSetMTI(t *testing.T) {
	tests := []struct {
		mti     string
		wantErr bool
	}{
		{mti: "0200"},
		{mti: "02A0", wantErr: true},
		{mti: "020", wantErr: true},
		{mti: "02000", wantErr: true},
		{mti: "", wantErr: true},
	}

	for _, test := range tests {
		m := mustMessage(t)
		err := m.SetMTI(test.mti)
		switch {
		case test.wantErr && !errors.Is(err, ErrInvalidMTI):
			t.Errorf("[TestSetMTI](%q): got %v, want ErrInvalidMTI", test.mti, err)
		case !test.wantErr && err != nil:
			t.Errorf("[TestSetMTI](%q): got err == %s, want err == nil", test.mti, err)
		case !test.wantErr && m.MTI() != test.mti:
			t.Errorf("[TestSetMTI](%q): MTI() = %q", test.mti, m.MTI())
		}
	}
}

func TestTypedGetters(t *testing.T) {
	m := mustMessage(t)
	if err := m.SetString(2, "4000001234567890"); err != nil {
		t.Fatal(err)
	}
	if err := m.SetBytes(52, []byte{1, 2, 3, 4, 5, 6, 7, 8}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetTLV(55, TLV{Tag: []byte{0x5A}, Value: []byte{0x40, 0x00}}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetString(41, "TERM01"); err != nil {
		t.Fatal(err)
	}

	pan, err := m.Decimal(2)
	if err != nil || pan.String() != "4000001234567890" {
		t.Errorf("[TestTypedGetters]: Decimal(2) = %v, %v", pan, err)
	}
	if got, _ := m.String(41); got != "TERM01  " {
		t.Errorf("[TestTypedGetters]: String(41) = %q, want padded to 8", got)
	}

	pin, _ := m.Bytes(52)
	pin[0] = 0xFF
	if again, _ := m.Bytes(52); again[0] != 1 {
		t.Errorf("[TestTypedGetters]: Bytes returned an alias of the stored value")
	}

	tlvs, _ := m.TLVs(55)
	if diff := pretty.Compare([]TLV{{Tag: []byte{0x5A}, Value: []byte{0x40, 0x00}}}, tlvs); diff != "" {
		t.Errorf("[TestTypedGetters]: TLVs -want +got:\n%s", diff)
	}

	mismatches := []struct {
		name string
		call func() error
	}{
		{"String of numeric", func() error { _, err := m.String(2); return err }},
		{"Decimal of alpha", func() error { _, err := m.Decimal(41); return err }},
		{"Bytes of nested", func() error { _, err := m.Bytes(55); return err }},
		{"TLVs of binary", func() error { _, err := m.TLVs(52); return err }},
	}
	for _, test := range mismatches {
		if err := test.call(); !errors.Is(err, ErrTypeMismatch) {
			t.Errorf("[TestTypedGetters](%s): got %v, want ErrTypeMismatch", test.name, err)
		}
	}

	if _, err := m.Get(3); !errors.Is(err, ErrFieldNotPresent) {
		t.Errorf("[TestTypedGetters]: Get(3) = %v, want ErrFieldNotPresent", err)
	}
	if _, err := m.Get(1); !errors.Is(err, ErrFieldNotPresent) {
		t.Errorf("[TestTypedGetters]: Get(1) = %v, want ErrFieldNotPresent", err)
	}
	if err := m.SetString(3, "12x"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("[TestTypedGetters]: SetString(3, 12x) = %v, want ErrTypeMismatch", err)
	}
}

func TestSetTime(t *testing.T) {
	m := mustMessage(t)
	at := time.Date(2024, time.March, 15, 13, 45, 30, 0, time.UTC)

	if err := m.SetTime(7, at); err != nil {
		t.Fatalf("[TestSetTime]: %v", err)
	}
	if got, _ := m.String(7); got != "0315134530" {
		t.Errorf("[TestSetTime]: field 7 = %q, want 0315134530", got)
	}

	got, err := m.Time(7)
	if err != nil {
		t.Fatalf("[TestSetTime]: Time(7): %v", err)
	}
	want := time.Date(0, time.March, 15, 13, 45, 30, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("[TestSetTime]: Time(7) = %v, want %v", got, want)
	}

	if err := m.SetTime(4, at); !errors.Is(err, ErrDateFormat) {
		t.Errorf("[TestSetTime]: SetTime(4) = %v, want ErrDateFormat", err)
	}
}

func TestPresent(t *testing.T) {
	m := mustMessage(t)
	_ = m.SetInt(70, 1)
	_ = m.SetString(2, "400000")
	_ = m.SetString(39, "00")

	entries, err := m.Present()
	if err != nil {
		t.Fatalf("[TestPresent]: %v", err)
	}
	var got []int
	for _, e := range entries {
		if e.Schema.Number != e.Number {
			t.Errorf("[TestPresent]: entry %d carries schema %d", e.Number, e.Schema.Number)
		}
		got = append(got, e.Number)
	}
	if diff := pretty.Compare([]int{2, 39, 70}, got); diff != "" {
		t.Errorf("[TestPresent]: -want +got:\n%s", diff)
	}
}

func TestSelectPresentMissingValue(t *testing.T) {
	var bm Bitmap
	_ = bm.Mark(3)

	_, err := SelectPresent(bm, make([]Value, MaxFieldNumber+1), DefaultRegistry())
	if !errors.Is(err, ErrFieldNotPresent) {
		t.Errorf("[TestSelectPresentMissingValue]: got %v, want ErrFieldNotPresent", err)
	}
}

func TestClone(t *testing.T) {
	m := mustMessage(t, WithMTI(MTIAuthorizationRequest))
	_ = m.SetBytes(52, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	_ = m.SetTLV(55, TLV{Tag: []byte{0x5A}, Value: []byte{0x40}})

	c := m.Clone()
	c.fields[52].(Binary)[0] = 0xFF
	c.fields[55].(Nested)[0].Value[0] = 0xFF
	_ = c.SetString(39, "00")

	if b, _ := m.Bytes(52); b[0] != 1 {
		t.Errorf("[TestClone]: clone shares binary storage")
	}
	if tlvs, _ := m.TLVs(55); tlvs[0].Value[0] != 0x40 {
		t.Errorf("[TestClone]: clone shares nested storage")
	}
	if m.Has(39) {
		t.Errorf("[TestClone]: clone shares the bitmap")
	}
	if c.MTI() != m.MTI() {
		t.Errorf("[TestClone]: MTI %q, want %q", c.MTI(), m.MTI())
	}
}

func TestCreateResponse(t *testing.T) {
	tests := []struct {
		mti     string
		want    string
		wantErr bool
	}{
		{mti: MTIAuthorizationRequest, want: MTIAuthorizationResponse},
		{mti: MTIFinancialRequest, want: MTIFinancialResponse},
		{mti: MTIReversalRequest, want: MTIReversalResponse},
		{mti: MTINetworkRequest, want: MTINetworkResponse},
		{mti: MTIFinancialResponse, wantErr: true},
		{mti: "", wantErr: true},
	}

	for _, test := range tests {
		m := mustMessage(t)
		if test.mti != "" {
			_ = m.SetMTI(test.mti)
		}
		_ = m.SetInt(11, 42)

		res, err := m.CreateResponse("00")
		if test.wantErr {
			if !errors.Is(err, ErrInvalidMTI) {
				t.Errorf("[TestCreateResponse](%q): got %v, want ErrInvalidMTI", test.mti, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("[TestCreateResponse](%q): got err == %s, want err == nil", test.mti, err)
			continue
		}
		if res.MTI() != test.want {
			t.Errorf("[TestCreateResponse](%q): MTI = %q, want %q", test.mti, res.MTI(), test.want)
		}
		if rc, _ := res.String(39); rc != "00" {
			t.Errorf("[TestCreateResponse](%q): field 39 = %q", test.mti, rc)
		}
		if !res.Has(11) || m.Has(39) || m.MTI() != test.mti {
			t.Errorf("[TestCreateResponse](%q): request and response are not independent", test.mti)
		}
	}
}

func TestLogValueMasksSecrets(t *testing.T) {
	m := mustMessage(t, WithMTI(MTIFinancialRequest))
	_ = m.SetString(2, "4000001234567890")
	_ = m.SetString(35, "4000001234567890=2512")
	_ = m.SetBytes(52, []byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0})
	_ = m.SetString(39, "00")

	got := map[string]string{}
	for _, a := range m.LogValue().Group() {
		switch a.Key {
		case "MTI":
			got["MTI"] = a.Value.String()
		case "Fields":
			for _, f := range a.Value.Group() {
				got[f.Key] = f.Value.String()
			}
		}
	}

	want := map[string]string{
		"MTI": "0200",
		"2":   "400000******7890",
		"35":  "*********************",
		"39":  "00",
		"52":  "****************",
	}
	if diff := pretty.Compare(want, got); diff != "" {
		t.Errorf("[TestLogValueMasksSecrets]: -want +got:\n%s", diff)
	}

	var _ slog.LogValuer = m
}
