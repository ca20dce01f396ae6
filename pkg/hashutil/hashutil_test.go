package hashutil

import "testing"

func TestHashBytesSha256KnownVector(t *testing.T) {
	got, err := HashBytes([]byte("abc"), HashAlgoSHA256)
	if err != nil {
		t.Fatalf("HashBytes() error = %v", err)
	}
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("sha256 = %q, want %q", got, want)
	}
}

func TestHashBytesBlake3IsDeterministic(t *testing.T) {
	first, err := HashBytes([]byte("hello"), HashAlgoBLAKE3)
	if err != nil {
		t.Fatalf("HashBytes() error = %v", err)
	}
	second, _ := HashBytes([]byte("hello"), HashAlgoBLAKE3)
	if first != second {
		t.Errorf("blake3 not deterministic: %q vs %q", first, second)
	}
	if len(first) != 64 {
		t.Errorf("blake3 hex length = %d, want 64", len(first))
	}
	other, _ := HashBytes([]byte("hello!"), HashAlgoBLAKE3)
	if first == other {
		t.Error("different inputs must not collide trivially")
	}
}

func TestHashBytesUnsupportedAlgo(t *testing.T) {
	if _, err := HashBytes([]byte("x"), HashAlgo("md5")); err == nil {
		t.Error("unsupported algorithm should error")
	}
}
