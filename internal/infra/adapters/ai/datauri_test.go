package ai

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func TestDecodeDataURI(t *testing.T) {
	raw := []byte{0x89, 0x50, 0x4e, 0x47}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	mime, data, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatal(err)
	}
	if mime != "image/png" {
		t.Fatalf("mime = %q", mime)
	}
	if !bytes.Equal(data, raw) {
		t.Fatalf("data mismatch: %v", data)
	}
}

func TestDecodeDataURIDefaultsMIME(t *testing.T) {
	uri := "data:;base64," + base64.StdEncoding.EncodeToString([]byte("x"))
	mime, _, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatal(err)
	}
	if mime != "image/jpeg" {
		t.Fatalf("mime = %q, want image/jpeg default", mime)
	}
}

func TestDecodeDataURIRejectsGarbage(t *testing.T) {
	for _, uri := range []string{"", "http://example.com/a.png", "data:image/png;base64", "data:image/png;base64,not-base64!!"} {
		if _, _, err := DecodeDataURI(uri); err == nil {
			t.Fatalf("expected error for %q", uri)
		}
	}
}

func TestEncodeDataURIRoundTrip(t *testing.T) {
	raw := []byte("payload")
	mime, data, err := DecodeDataURI(EncodeDataURI("image/webp", raw))
	if err != nil {
		t.Fatal(err)
	}
	if mime != "image/webp" || !bytes.Equal(data, raw) {
		t.Fatalf("round trip mismatch: %q %v", mime, data)
	}
}
