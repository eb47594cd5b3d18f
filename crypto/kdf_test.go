package crypto

import (
	"bytes"
	"testing"
)

func TestSessionKeyDeterministic(t *testing.T) {
	master := MasterKey("pw", bytes.Repeat([]byte{1}, 16), DefaultKDFParams)
	salt := bytes.Repeat([]byte{2}, 16)

	k1, err := SessionKey(master, salt, 7)
	if err != nil {
		t.Fatalf("SessionKey: %v", err)
	}
	k2, err := SessionKey(master, salt, 7)
	if err != nil {
		t.Fatalf("SessionKey: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Fatal("SessionKey not deterministic for identical inputs")
	}

	k3, _ := SessionKey(master, salt, 8)
	if bytes.Equal(k1, k3) {
		t.Fatal("SessionKey collided across block ids")
	}
}

func TestMasterKeyDependsOnPassphrase(t *testing.T) {
	salt := bytes.Repeat([]byte{3}, 16)
	k1 := MasterKey("hunter2", salt, DefaultKDFParams)
	k2 := MasterKey("hunter3", salt, DefaultKDFParams)
	if bytes.Equal(k1, k2) {
		t.Fatal("MasterKey must differ for different passphrases")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := MasterKey("pw", bytes.Repeat([]byte{4}, 16), DefaultKDFParams)
	nonce, err := NewNonce()
	if err != nil {
		t.Fatalf("NewNonce: %v", err)
	}
	plaintext := []byte("deep time archival payload")

	ct, err := Seal(key, nonce, plaintext)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	pt, err := Open(key, nonce, ct)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(pt, plaintext) {
		t.Fatal("round trip mismatch")
	}
}

func TestOpenWrongKeyFails(t *testing.T) {
	key1 := MasterKey("hunter2", bytes.Repeat([]byte{5}, 16), DefaultKDFParams)
	key2 := MasterKey("hunter3", bytes.Repeat([]byte{5}, 16), DefaultKDFParams)
	nonce, _ := NewNonce()

	ct, err := Seal(key1, nonce, []byte("secret"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := Open(key2, nonce, ct); err == nil {
		t.Fatal("expected auth failure with wrong key")
	}
}
