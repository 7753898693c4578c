package wire

import "testing"

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{ObjectID: 42, Opcode: 3, Size: 16}
	buf := make([]byte, HeaderLen)
	h.Encode(buf)

	got, err := DecodeHeader(buf)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if got != h {
		t.Errorf("got %+v, want %+v", got, h)
	}
}

func TestDecodeHeaderShort(t *testing.T) {
	if _, err := DecodeHeader([]byte{1, 2, 3}); err == nil {
		t.Error("expected error decoding short header")
	}
}

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	w.Uint32(7).Int32(-3).String("hello").Array([]byte{1, 2, 3, 4, 5}).Fixed(FixedFromFloat64(1.5))
	msg := w.Finish(10, 2)

	h, err := DecodeHeader(msg)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if h.ObjectID != 10 || h.Opcode != 2 {
		t.Fatalf("unexpected header: %+v", h)
	}
	if int(h.Size) != len(msg) {
		t.Fatalf("header size %d != message length %d", h.Size, len(msg))
	}

	r := NewReader(msg[HeaderLen:])
	if v, err := r.Uint32(); err != nil || v != 7 {
		t.Fatalf("Uint32: %v, %d", err, v)
	}
	if v, err := r.Int32(); err != nil || v != -3 {
		t.Fatalf("Int32: %v, %d", err, v)
	}
	if s, err := r.String(); err != nil || s != "hello" {
		t.Fatalf("String: %v, %q", err, s)
	}
	if a, err := r.Array(); err != nil || len(a) != 5 {
		t.Fatalf("Array: %v, %v", err, a)
	}
	if f, err := r.Fixed(); err != nil || f.ToFloat64() != 1.5 {
		t.Fatalf("Fixed: %v, %v", err, f)
	}
	if r.Remaining() != 0 {
		t.Errorf("expected no remaining bytes, got %d", r.Remaining())
	}
}

func TestReaderPastEnd(t *testing.T) {
	r := NewReader([]byte{1, 2})
	if _, err := r.Uint32(); err == nil {
		t.Error("expected error reading past end")
	}
}

func TestRegistryMissingObjectIsProtocolError(t *testing.T) {
	reg := NewRegistry()
	err := reg.Dispatch(Header{ObjectID: 99, Opcode: 0, Size: HeaderLen}, NewReader(nil), nil)
	var perr *ProtocolError
	if err == nil {
		t.Fatal("expected error")
	}
	if pe, ok := err.(*ProtocolError); !ok {
		t.Fatalf("expected *ProtocolError, got %T", err)
	} else {
		perr = pe
	}
	if perr.Code != ErrorInvalidObject {
		t.Errorf("expected ErrorInvalidObject, got %d", perr.Code)
	}
}
