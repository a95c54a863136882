package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"

	"github.com/memeswapfi/memeswap-contracts/internal/registry"
	"github.com/memeswapfi/memeswap-contracts/internal/service"
	"github.com/memeswapfi/memeswap-contracts/internal/token"
	"github.com/memeswapfi/memeswap-contracts/internal/vault"
)

var (
	hRegistryAddr = common.HexToAddress("0x0000000000000000000000000000000000006001")
	hOwner        = common.HexToAddress("0x0000000000000000000000000000000000006002")
	hFeeTo        = common.HexToAddress("0x0000000000000000000000000000000000006fee")
	hVaultAddr    = common.HexToAddress("0x0000000000000000000000000000000000006e01")
	hEscrowAddr   = common.HexToAddress("0x0000000000000000000000000000000000006e02")
	hLP           = common.HexToAddress("0x00000000000000000000000000000000000060d1")

	hTokA = common.HexToAddress("0x00000000000000000000000000000000000060aa")
	hTokB = common.HexToAddress("0x00000000000000000000000000000000000060bb")

	hDigest = common.HexToHash("0x7f1e2d3c4b5a69788796a5b4c3d2e1f00f1e2d3c4b5a69788796a5b4c3d2e1f0")
)

// newTestApp stands up a fiber app over an in-process deployment with one
// funded A/B pool and an empty vault.
func newTestApp(t *testing.T) (*fiber.App, *registry.Registry) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := time.Unix(1_700_000_000, 0)
	now := func() time.Time { return clock }

	reg := registry.New(hRegistryAddr, hOwner, hFeeTo, hDigest, logger, now)
	tokA := token.New("Token A", "TKA", 18, hTokA, now)
	tokB := token.New("Token B", "TKB", 18, hTokB, now)
	reg.RegisterToken(tokA)
	reg.RegisterToken(tokB)

	p, err := reg.CreatePair(hTokA, hTokB)
	if err != nil {
		t.Fatalf("CreatePair: %v", err)
	}
	if err := tokA.Mint(p.Address(), big.NewInt(1_000_000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := tokB.Mint(p.Address(), big.NewInt(2_000_000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := p.Mint(hLP); err != nil {
		t.Fatalf("pool mint: %v", err)
	}

	v := vault.New(hVaultAddr, hOwner, hRegistryAddr, tokA, reg, &vault.ShareEscrow{Addr: hEscrowAddr}, nil, vault.DefaultParams(), logger, now)
	reg.SetVault(v)

	quoteHandler := NewQuoteHandler(logger, service.NewQuoteService(logger, reg))
	poolHandler := NewPoolHandler(logger, service.NewPoolService(logger, reg))
	vaultHandler := NewVaultHandler(logger, service.NewVaultService(logger, v))

	app := fiber.New()
	app.Get("/quote", quoteHandler.Handle())
	app.Get("/route", quoteHandler.HandleRoute())
	app.Get("/pools", poolHandler.HandleList())
	app.Get("/pools/:address", poolHandler.Handle())
	app.Get("/vault", vaultHandler.HandleStats())
	app.Get("/vault/position", vaultHandler.HandlePosition())
	app.Get("/vault/rent-quote", vaultHandler.HandleRentQuote())
	app.Get("/vault/rental", vaultHandler.HandleRental())
	return app, reg
}

func get(t *testing.T, app *fiber.App, url string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestQuoteHandler_OK(t *testing.T) {
	app, reg := newTestApp(t)
	p, _ := reg.GetPair(hTokA, hTokB)

	resp, body := get(t, app, "/quote?pool="+p.Address().Hex()+"&src="+hTokA.Hex()+"&dst="+hTokB.Hex()+"&src_amount=1000")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", resp.StatusCode, body)
	}
	if body != "1991" {
		t.Fatalf("body = %q, want 1991", body)
	}
}

func TestQuoteHandler_Validation(t *testing.T) {
	app, reg := newTestApp(t)
	p, _ := reg.GetPair(hTokA, hTokB)

	cases := []struct {
		name string
		url  string
		code int
	}{
		{"missing params", "/quote", http.StatusBadRequest},
		{"same addresses", "/quote?pool=" + p.Address().Hex() + "&src=" + hTokA.Hex() + "&dst=" + hTokA.Hex() + "&src_amount=10", http.StatusBadRequest},
		{"bad amount", "/quote?pool=" + p.Address().Hex() + "&src=" + hTokA.Hex() + "&dst=" + hTokB.Hex() + "&src_amount=nope", http.StatusBadRequest},
		{"zero amount", "/quote?pool=" + p.Address().Hex() + "&src=" + hTokA.Hex() + "&dst=" + hTokB.Hex() + "&src_amount=0", http.StatusBadRequest},
		{"unknown pool", "/quote?pool=0x000000000000000000000000000000000000beef&src=" + hTokA.Hex() + "&dst=" + hTokB.Hex() + "&src_amount=10", http.StatusNotFound},
	}
	for _, tc := range cases {
		resp, body := get(t, app, tc.url)
		if resp.StatusCode != tc.code {
			t.Errorf("%s: status = %d, want %d (%s)", tc.name, resp.StatusCode, tc.code, body)
		}
	}
}

func TestRouteHandler_OK(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := get(t, app, "/route?path="+hTokA.Hex()+","+hTokB.Hex()+"&src_amount=1000")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", resp.StatusCode, body)
	}
	var out struct {
		Amounts []string `json:"amounts"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Amounts) != 2 || out.Amounts[1] != "1991" {
		t.Fatalf("amounts = %v, want [1000 1991]", out.Amounts)
	}
}

func TestRouteHandler_BadPath(t *testing.T) {
	app, _ := newTestApp(t)
	resp, _ := get(t, app, "/route?path="+hTokA.Hex()+"&src_amount=1000")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPoolHandler_InfoAndList(t *testing.T) {
	app, reg := newTestApp(t)
	p, _ := reg.GetPair(hTokA, hTokB)

	resp, body := get(t, app, "/pools/"+p.Address().Hex())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", resp.StatusCode, body)
	}
	var info struct {
		Reserve0    *big.Int `json:"reserve0"`
		Reserve1    *big.Int `json:"reserve1"`
		UnderRental bool     `json:"under_rental"`
	}
	if err := json.Unmarshal([]byte(body), &info); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if info.Reserve0.Cmp(big.NewInt(1_000_000)) != 0 || info.Reserve1.Cmp(big.NewInt(2_000_000)) != 0 {
		t.Fatalf("reserves = %v/%v", info.Reserve0, info.Reserve1)
	}
	if info.UnderRental {
		t.Fatal("quiet pool reported under rental")
	}

	resp, _ = get(t, app, "/pools/0x000000000000000000000000000000000000beef")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing pool status = %d, want 404", resp.StatusCode)
	}

	resp, body = get(t, app, "/pools")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d (%s)", resp.StatusCode, body)
	}
}

func TestVaultHandler_StatsAndQuote(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := get(t, app, "/vault")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %d (%s)", resp.StatusCode, body)
	}
	var stats struct {
		TotalSupply *big.Int `json:"total_supply"`
	}
	if err := json.Unmarshal([]byte(body), &stats); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if stats.TotalSupply.Sign() != 0 {
		t.Fatalf("fresh vault total supply = %v", stats.TotalSupply)
	}

	resp, body = get(t, app, "/vault/rent-quote?amount=1000000&duration=672h")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rent quote status = %d (%s)", resp.StatusCode, body)
	}

	resp, _ = get(t, app, "/vault/rent-quote?amount=1000000&duration=soon")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad duration status = %d, want 400", resp.StatusCode)
	}

	resp, _ = get(t, app, "/vault/position?account=nothex")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad account status = %d, want 400", resp.StatusCode)
	}

	resp, _ = get(t, app, "/vault/rental?pair="+hTokA.Hex())
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("quiet rental status = %d, want 404", resp.StatusCode)
	}
}
