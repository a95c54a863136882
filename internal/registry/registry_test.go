package registry

import (
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/memeswapfi/memeswap-contracts/internal/token"
	"github.com/memeswapfi/memeswap-contracts/internal/vault"
	"github.com/memeswapfi/memeswap-contracts/pkg/swapmath"
)

var (
	registryAddr = common.HexToAddress("0x0000000000000000000000000000000000004001")
	regOwner     = common.HexToAddress("0x0000000000000000000000000000000000004002")
	regFeeTo     = common.HexToAddress("0x0000000000000000000000000000000000004fee")
	outsider     = common.HexToAddress("0x00000000000000000000000000000000000040d9")

	tokenAAddr = common.HexToAddress("0x00000000000000000000000000000000000040aa")
	tokenBAddr = common.HexToAddress("0x00000000000000000000000000000000000040bb")
	tokenCAddr = common.HexToAddress("0x00000000000000000000000000000000000040cc")

	testDigest = common.HexToHash("0x96e8ac4277198ff8b6f785478aa9a39f403cb768dd02cbee326c3e7da348845f")
)

func newRegistry(t *testing.T) (*Registry, *token.Token, *token.Token) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := time.Unix(1_700_000_000, 0)
	now := func() time.Time { return clock }

	r := New(registryAddr, regOwner, regFeeTo, testDigest, logger, now)
	tokA := token.New("Token A", "TKA", 18, tokenAAddr, now)
	tokB := token.New("Token B", "TKB", 18, tokenBAddr, now)
	r.RegisterToken(tokA)
	r.RegisterToken(tokB)
	return r, tokA, tokB
}

func TestCreatePair_DeterministicAddress(t *testing.T) {
	t.Parallel()
	r, _, _ := newRegistry(t)

	p, err := r.CreatePair(tokenBAddr, tokenAAddr) // reversed order on purpose
	if err != nil {
		t.Fatalf("CreatePair: %v", err)
	}
	want, err := swapmath.PairAddress(registryAddr, tokenAAddr, tokenBAddr, testDigest)
	if err != nil {
		t.Fatalf("PairAddress: %v", err)
	}
	if p.Address() != want {
		t.Fatalf("pair address = %v, want %v", p.Address(), want)
	}
	if p.Token0() != tokenAAddr || p.Token1() != tokenBAddr {
		t.Fatalf("tokens not sorted: %v / %v", p.Token0(), p.Token1())
	}
	if !r.IsRegisteredPair(want) {
		t.Fatal("pair not registered by address")
	}
}

func TestCreatePair_Duplicate(t *testing.T) {
	t.Parallel()
	r, _, _ := newRegistry(t)

	if _, err := r.CreatePair(tokenAAddr, tokenBAddr); err != nil {
		t.Fatalf("CreatePair: %v", err)
	}
	if _, err := r.CreatePair(tokenBAddr, tokenAAddr); !errors.Is(err, ErrPairExists) {
		t.Fatalf("err = %v, want ErrPairExists", err)
	}
}

func TestCreatePair_UnknownToken(t *testing.T) {
	t.Parallel()
	r, _, _ := newRegistry(t)

	if _, err := r.CreatePair(tokenAAddr, tokenCAddr); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("err = %v, want ErrUnknownToken", err)
	}
}

func TestCreatePair_IdenticalTokens(t *testing.T) {
	t.Parallel()
	r, _, _ := newRegistry(t)

	if _, err := r.CreatePair(tokenAAddr, tokenAAddr); !errors.Is(err, swapmath.ErrIdenticalTokens) {
		t.Fatalf("err = %v, want ErrIdenticalTokens", err)
	}
}

func TestGetPair_EitherOrder(t *testing.T) {
	t.Parallel()
	r, _, _ := newRegistry(t)
	created, err := r.CreatePair(tokenAAddr, tokenBAddr)
	if err != nil {
		t.Fatalf("CreatePair: %v", err)
	}

	if p, ok := r.GetPair(tokenAAddr, tokenBAddr); !ok || p != created {
		t.Fatal("forward lookup failed")
	}
	if p, ok := r.GetPair(tokenBAddr, tokenAAddr); !ok || p != created {
		t.Fatal("reversed lookup failed")
	}
	if _, ok := r.GetPair(tokenAAddr, tokenCAddr); ok {
		t.Fatal("lookup for missing pair succeeded")
	}
}

func TestOwnerOnlySetters(t *testing.T) {
	t.Parallel()
	r, _, _ := newRegistry(t)

	if err := r.SetFeeTo(outsider, outsider); !errors.Is(err, ErrForbidden) {
		t.Fatalf("SetFeeTo by outsider: %v", err)
	}
	if err := r.SetManaged(outsider, tokenAAddr, true); !errors.Is(err, ErrForbidden) {
		t.Fatalf("SetManaged by outsider: %v", err)
	}
	if err := r.ApproveToken(outsider, tokenAAddr, true); !errors.Is(err, ErrForbidden) {
		t.Fatalf("ApproveToken by outsider: %v", err)
	}

	if err := r.SetManaged(regOwner, tokenAAddr, true); err != nil {
		t.Fatalf("SetManaged: %v", err)
	}
	if !r.IsManaged(tokenAAddr) {
		t.Fatal("token not managed after SetManaged")
	}
	if err := r.ApproveToken(regOwner, tokenBAddr, true); err != nil {
		t.Fatalf("ApproveToken: %v", err)
	}
	if !r.IsApprovedToken(tokenBAddr) {
		t.Fatal("token not approved after ApproveToken")
	}
	if err := r.SetFeeTo(regOwner, outsider); err != nil {
		t.Fatalf("SetFeeTo: %v", err)
	}
	if r.FeeTo() != outsider {
		t.Fatal("feeTo not updated")
	}
}

func TestManagedLedger_OnlyForManagedTokens(t *testing.T) {
	t.Parallel()
	r, tokA, _ := newRegistry(t)

	if _, ok := r.ManagedLedger(tokenAAddr); ok {
		t.Fatal("unmanaged token exposed a burnable ledger")
	}
	if err := r.SetManaged(regOwner, tokenAAddr, true); err != nil {
		t.Fatalf("SetManaged: %v", err)
	}
	led, ok := r.ManagedLedger(tokenAAddr)
	if !ok {
		t.Fatal("managed ledger missing")
	}
	if err := tokA.Mint(registryAddr, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := led.Burn(registryAddr, big.NewInt(40)); err != nil {
		t.Fatalf("burn through ledger: %v", err)
	}
	if got := tokA.BalanceOf(registryAddr); got.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("balance = %v, want 60", got)
	}
}

func TestUnderRental_NoVaultConfigured(t *testing.T) {
	t.Parallel()
	r, _, _ := newRegistry(t)
	p, err := r.CreatePair(tokenAAddr, tokenBAddr)
	if err != nil {
		t.Fatalf("CreatePair: %v", err)
	}
	if r.UnderRental(p.Address()) {
		t.Fatal("rental reported with no vault wired")
	}
	if _, err := r.LaunchRental(p.Address(), tokenAAddr, big.NewInt(1), 7*24*time.Hour, outsider, common.Address{}); !errors.Is(err, ErrVaultUnset) {
		t.Fatalf("err = %v, want ErrVaultUnset", err)
	}
	if _, err := r.SeedRental(p.Address()); !errors.Is(err, ErrVaultUnset) {
		t.Fatalf("SeedRental err = %v, want ErrVaultUnset", err)
	}
}

func TestMarkMatured_Records(t *testing.T) {
	t.Parallel()
	r, _, _ := newRegistry(t)

	if _, ok := r.MaturedAt(tokenAAddr); ok {
		t.Fatal("fresh token reported matured")
	}
	at := time.Unix(1_700_100_000, 0)
	r.MarkMatured(tokenAAddr, at)
	got, ok := r.MaturedAt(tokenAAddr)
	if !ok || got != at.Unix() {
		t.Fatalf("matured at = %v (%v), want %v", got, ok, at.Unix())
	}
}

// End-to-end: a vault wired through SetVault serves rentals launched by the
// registry, and the pair reports the rental through the oversight interface.
func TestLaunchRental_EndToEnd(t *testing.T) {
	t.Parallel()
	r, tokA, _ := newRegistry(t)
	p, err := r.CreatePair(tokenAAddr, tokenBAddr)
	if err != nil {
		t.Fatalf("CreatePair: %v", err)
	}
	if err := r.ApproveToken(regOwner, tokenAAddr, true); err != nil {
		t.Fatalf("ApproveToken: %v", err)
	}
	if err := r.SetManaged(regOwner, tokenBAddr, true); err != nil {
		t.Fatalf("SetManaged: %v", err)
	}

	vaultAddr := common.HexToAddress("0x0000000000000000000000000000000000004e01")
	escrowAddr := common.HexToAddress("0x0000000000000000000000000000000000004e02")
	staker := common.HexToAddress("0x0000000000000000000000000000000000004e03")
	borrower := common.HexToAddress("0x0000000000000000000000000000000000004e04")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	v := vault.New(vaultAddr, regOwner, registryAddr, tokA, r, &vault.ShareEscrow{Addr: escrowAddr}, nil, vault.DefaultParams(), logger, nil)
	r.SetVault(v)

	amount := big.NewInt(1_000_000)
	if err := tokA.Mint(staker, amount); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := tokA.Approve(staker, vaultAddr, amount); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := v.Stake(staker, amount, common.Address{}); err != nil {
		t.Fatalf("Stake: %v", err)
	}

	if err := tokA.Mint(borrower, big.NewInt(10_000)); err != nil {
		t.Fatalf("mint price funds: %v", err)
	}
	if err := tokA.Approve(borrower, vaultAddr, big.NewInt(10_000)); err != nil {
		t.Fatalf("approve price: %v", err)
	}

	principal := big.NewInt(500_000)
	if _, err := r.LaunchRental(p.Address(), tokenAAddr, principal, 7*24*time.Hour, borrower, common.Address{}); err != nil {
		t.Fatalf("LaunchRental: %v", err)
	}
	if !r.UnderRental(p.Address()) {
		t.Fatal("pair not reported under rental")
	}
	if got := tokA.BalanceOf(borrower); got.Cmp(principal) < 0 {
		t.Fatalf("borrower holds %v, want at least the %v principal", got, principal)
	}
}

func TestSeedRental_ParksSharesInEscrow(t *testing.T) {
	t.Parallel()
	r, tokA, tokB := newRegistry(t)
	p, err := r.CreatePair(tokenAAddr, tokenBAddr)
	if err != nil {
		t.Fatalf("CreatePair: %v", err)
	}
	if err := r.ApproveToken(regOwner, tokenAAddr, true); err != nil {
		t.Fatalf("ApproveToken: %v", err)
	}
	if err := r.SetManaged(regOwner, tokenBAddr, true); err != nil {
		t.Fatalf("SetManaged: %v", err)
	}

	vaultAddr := common.HexToAddress("0x0000000000000000000000000000000000004f01")
	escrowAddr := common.HexToAddress("0x0000000000000000000000000000000000004f02")
	staker := common.HexToAddress("0x0000000000000000000000000000000000004f03")
	borrower := common.HexToAddress("0x0000000000000000000000000000000000004f04")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	v := vault.New(vaultAddr, regOwner, registryAddr, tokA, r, &vault.ShareEscrow{Addr: escrowAddr}, nil, vault.DefaultParams(), logger, nil)
	r.SetVault(v)

	stakeAmt := big.NewInt(1_000_000)
	if err := tokA.Mint(staker, stakeAmt); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := tokA.Approve(staker, vaultAddr, stakeAmt); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := v.Stake(staker, stakeAmt, common.Address{}); err != nil {
		t.Fatalf("Stake: %v", err)
	}
	if err := tokA.Mint(borrower, big.NewInt(10_000)); err != nil {
		t.Fatalf("mint price funds: %v", err)
	}
	if err := tokA.Approve(borrower, vaultAddr, big.NewInt(10_000)); err != nil {
		t.Fatalf("approve price: %v", err)
	}

	principal := big.NewInt(500_000)
	if _, err := r.LaunchRental(p.Address(), tokenAAddr, principal, 7*24*time.Hour, borrower, common.Address{}); err != nil {
		t.Fatalf("LaunchRental: %v", err)
	}

	// the borrower pairs the borrowed principal with a fresh managed-token
	// supply, delivering both sides to the pair before seeding
	if err := tokB.Mint(p.Address(), big.NewInt(2_000_000)); err != nil {
		t.Fatalf("mint managed side: %v", err)
	}
	if err := tokA.Transfer(borrower, p.Address(), principal); err != nil {
		t.Fatalf("deliver principal: %v", err)
	}

	shares, err := r.SeedRental(p.Address())
	if err != nil {
		t.Fatalf("SeedRental: %v", err)
	}
	if shares.Sign() <= 0 {
		t.Fatalf("seeded shares = %v, want > 0", shares)
	}
	if got := p.Shares().BalanceOf(v.EscrowAddress()); got.Cmp(shares) != 0 {
		t.Fatalf("escrow holds %v shares, want %v", got, shares)
	}
	if got := p.Shares().BalanceOf(registryAddr); got.Sign() != 0 {
		t.Fatalf("registry retained %v shares, want 0", got)
	}

	if _, err := r.SeedRental(outsider); !errors.Is(err, ErrUnknownPair) {
		t.Fatalf("err = %v, want ErrUnknownPair", err)
	}
}
