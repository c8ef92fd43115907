package cli

import (
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/nhoffmann/punchout/internal/keyring"
)

func TestKeyringSetCmdStoresKey(t *testing.T) {
	gokeyring.MockInit()
	defer func() { _ = keyring.DeleteMasterKey() }()

	cmd := &KeyringSetCmd{Key: "test-master-key"}
	if err := cmd.Run(&Context{}); err != nil {
		t.Fatalf("KeyringSetCmd.Run() failed: %v", err)
	}

	stored, err := keyring.GetMasterKey()
	if err != nil {
		t.Fatalf("GetMasterKey failed: %v", err)
	}
	if stored != "test-master-key" {
		t.Errorf("stored key = %q, want %q", stored, "test-master-key")
	}
}

func TestKeyringSetCmdGenerate(t *testing.T) {
	gokeyring.MockInit()
	defer func() { _ = keyring.DeleteMasterKey() }()

	cmd := &KeyringSetCmd{Generate: true}
	if err := cmd.Run(&Context{}); err != nil {
		t.Fatalf("KeyringSetCmd.Run() failed: %v", err)
	}

	stored, err := keyring.GetMasterKey()
	if err != nil {
		t.Fatalf("GetMasterKey failed: %v", err)
	}
	if stored == "" {
		t.Error("expected a generated key to be stored")
	}
}

func TestKeyringSetCmdGenerateAndKeyConflict(t *testing.T) {
	gokeyring.MockInit()

	cmd := &KeyringSetCmd{Key: "explicit", Generate: true}
	if err := cmd.Run(&Context{}); err == nil {
		t.Error("expected --generate with --key to fail")
	}
}

func TestKeyringClearCmd(t *testing.T) {
	gokeyring.MockInit()

	if err := keyring.SetMasterKey("test-master-key"); err != nil {
		t.Fatalf("SetMasterKey failed: %v", err)
	}

	cmd := &KeyringClearCmd{}
	if err := cmd.Run(&Context{}); err != nil {
		t.Fatalf("KeyringClearCmd.Run() failed: %v", err)
	}

	if _, err := keyring.GetMasterKey(); err != keyring.ErrNotFound {
		t.Errorf("expected key to be removed, got error %v", err)
	}

	// Clearing again reports, not errors
	if err := cmd.Run(&Context{}); err != nil {
		t.Errorf("KeyringClearCmd.Run() on empty keyring failed: %v", err)
	}
}

func TestKeyringStatusCmd(t *testing.T) {
	gokeyring.MockInit()
	defer func() { _ = keyring.DeleteMasterKey() }()

	cmd := &KeyringStatusCmd{}
	if err := cmd.Run(&Context{}); err != nil {
		t.Errorf("KeyringStatusCmd.Run() with empty keyring failed: %v", err)
	}

	if err := keyring.SetMasterKey("test-master-key"); err != nil {
		t.Fatalf("SetMasterKey failed: %v", err)
	}
	if err := cmd.Run(&Context{}); err != nil {
		t.Errorf("KeyringStatusCmd.Run() with stored key failed: %v", err)
	}
}
