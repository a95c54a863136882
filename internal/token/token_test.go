package token

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	carol = common.HexToAddress("0x00000000000000000000000000000000000000c3")
)

func newTestToken(t *testing.T) *Token {
	t.Helper()
	return New("Test Token", "TST", 18, common.HexToAddress("0x0000000000000000000000000000000000001001"), nil)
}

func TestMintTransferBurn(t *testing.T) {
	t.Parallel()

	tok := newTestToken(t)
	if err := tok.Mint(alice, big.NewInt(1000)); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := tok.Transfer(alice, bob, big.NewInt(400)); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if got := tok.BalanceOf(alice); got.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("alice balance = %s, want 600", got)
	}
	if got := tok.BalanceOf(bob); got.Cmp(big.NewInt(400)) != 0 {
		t.Fatalf("bob balance = %s, want 400", got)
	}
	if err := tok.Burn(bob, big.NewInt(400)); err != nil {
		t.Fatalf("Burn: %v", err)
	}
	if got := tok.TotalSupply(); got.Cmp(big.NewInt(600)) != 0 {
		t.Fatalf("supply = %s, want 600", got)
	}

	if err := tok.Transfer(bob, alice, big.NewInt(1)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestApproveTransferFrom(t *testing.T) {
	t.Parallel()

	tok := newTestToken(t)
	if err := tok.Mint(alice, big.NewInt(100)); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := tok.Approve(alice, bob, big.NewInt(60)); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := tok.TransferFrom(bob, alice, carol, big.NewInt(50)); err != nil {
		t.Fatalf("TransferFrom: %v", err)
	}
	if got := tok.Allowance(alice, bob); got.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("remaining allowance = %s, want 10", got)
	}
	if err := tok.TransferFrom(bob, alice, carol, big.NewInt(11)); !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance, got %v", err)
	}
}

func TestPermit(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	tok := New("Test Token", "TST", 18, common.HexToAddress("0x0000000000000000000000000000000000001001"), func() time.Time { return now })

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	owner := crypto.PubkeyToAddress(key.PublicKey)
	deadline := now.Unix() + 3600

	digest := tok.PermitDigest(owner, bob, big.NewInt(500), tok.Nonce(owner), deadline)
	sig, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if err := tok.Permit(owner, bob, big.NewInt(500), deadline, sig); err != nil {
		t.Fatalf("Permit: %v", err)
	}
	if got := tok.Allowance(owner, bob); got.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("allowance = %s, want 500", got)
	}
	if got := tok.Nonce(owner); got != 1 {
		t.Fatalf("nonce = %d, want 1", got)
	}

	// replay consumes a stale nonce and must fail recovery
	if err := tok.Permit(owner, bob, big.NewInt(500), deadline, sig); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature on replay, got %v", err)
	}
}

func TestPermit_Expired(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	tok := New("Test Token", "TST", 18, common.HexToAddress("0x0000000000000000000000000000000000001001"), func() time.Time { return now })

	key, _ := crypto.GenerateKey()
	owner := crypto.PubkeyToAddress(key.PublicKey)
	deadline := now.Unix() - 1

	digest := tok.PermitDigest(owner, bob, big.NewInt(1), tok.Nonce(owner), deadline)
	sig, _ := crypto.Sign(digest.Bytes(), key)

	if err := tok.Permit(owner, bob, big.NewInt(1), deadline, sig); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestPermit_WrongSigner(t *testing.T) {
	t.Parallel()

	tok := newTestToken(t)
	key, _ := crypto.GenerateKey()
	// signature made by key but claims alice as owner
	deadline := time.Now().Unix() + 3600
	digest := tok.PermitDigest(alice, bob, big.NewInt(1), 0, deadline)
	sig, _ := crypto.Sign(digest.Bytes(), key)

	if err := tok.Permit(alice, bob, big.NewInt(1), deadline, sig); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if err := tok.Permit(alice, bob, big.NewInt(1), deadline, []byte{1, 2, 3}); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for short sig, got %v", err)
	}
}
