package keyring

import (
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetMasterKey(t *testing.T) {
	gokeyring.MockInit()

	if err := SetMasterKey("test-master-key"); err != nil {
		t.Fatalf("SetMasterKey failed: %v", err)
	}

	key, err := GetMasterKey()
	if err != nil {
		t.Fatalf("GetMasterKey failed: %v", err)
	}
	if key != "test-master-key" {
		t.Errorf("GetMasterKey() = %q, want %q", key, "test-master-key")
	}
}

func TestSetMasterKeyEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetMasterKey(""); err == nil {
		t.Error("expected SetMasterKey(\"\") to fail")
	}
}

func TestGetMasterKeyNotFound(t *testing.T) {
	gokeyring.MockInit()

	_ = DeleteMasterKey()

	if _, err := GetMasterKey(); err != ErrNotFound {
		t.Errorf("GetMasterKey() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDeleteMasterKey(t *testing.T) {
	gokeyring.MockInit()

	if err := SetMasterKey("test-master-key"); err != nil {
		t.Fatalf("SetMasterKey failed: %v", err)
	}

	if err := DeleteMasterKey(); err != nil {
		t.Fatalf("DeleteMasterKey failed: %v", err)
	}

	if _, err := GetMasterKey(); err != ErrNotFound {
		t.Errorf("after delete, GetMasterKey() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDeleteMasterKeyNotFound(t *testing.T) {
	gokeyring.MockInit()

	_ = DeleteMasterKey()

	if err := DeleteMasterKey(); err != ErrNotFound {
		t.Errorf("DeleteMasterKey() error = %v, want %v", err, ErrNotFound)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false, want true in mock mode")
	}
}
