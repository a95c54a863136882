package service

import (
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/memeswapfi/memeswap-contracts/internal/vault"
)

// VaultStats is the aggregate state of the rental vault.
type VaultStats struct {
	TotalSupply     *big.Int `json:"total_supply"`
	RentedSupply    *big.Int `json:"rented_supply"`
	TotalInQueue    *big.Int `json:"total_in_queue"`
	DequeuePossible bool     `json:"dequeue_possible"`
}

// VaultPosition is one staker's view of the vault.
type VaultPosition struct {
	Balance   *big.Int `json:"balance"`
	Claimable *big.Int `json:"claimable"`
	Earned    *big.Int `json:"earned"`
}

// RentalInfo is the externally visible state of one rental.
type RentalInfo struct {
	Pair     common.Address `json:"pair"`
	Borrower common.Address `json:"borrower"`
	Token    common.Address `json:"token"`
	Amount   *big.Int       `json:"amount"`
	EndDate  int64          `json:"end_date"`
}

// VaultService reads rental-vault state for the HTTP surface.
type VaultService struct {
	BaseService
	vault *vault.Vault
}

// NewVaultService constructs a VaultService over the deployed vault.
func NewVaultService(logger *slog.Logger, v *vault.Vault) *VaultService {
	return &VaultService{
		BaseService: BaseService{logger: logger},
		vault:       v,
	}
}

// Stats returns the vault's aggregate counters.
func (s *VaultService) Stats() *VaultStats {
	return &VaultStats{
		TotalSupply:     s.vault.TotalSupply(),
		RentedSupply:    s.vault.RentedSupply(),
		TotalInQueue:    s.vault.TotalInQueue(),
		DequeuePossible: s.vault.DequeuePossible(),
	}
}

// Position returns one staker's balances and accrued yield.
func (s *VaultService) Position(account common.Address) *VaultPosition {
	return &VaultPosition{
		Balance:   s.vault.BalanceOf(account),
		Claimable: s.vault.Claimable(account),
		Earned:    s.vault.Earned(account),
	}
}

// RentQuote prices a prospective rental at current utilization.
func (s *VaultService) RentQuote(amount *big.Int, duration time.Duration) *big.Int {
	return s.vault.RentQuote(amount, duration)
}

// Rental returns the active rental on the given pair.
func (s *VaultService) Rental(pair common.Address) (*RentalInfo, error) {
	rent, ok := s.vault.RentalOf(pair)
	if !ok {
		return nil, ErrNoRental
	}
	return &RentalInfo{
		Pair:     pair,
		Borrower: rent.Borrower,
		Token:    rent.Token,
		Amount:   rent.Amount,
		EndDate:  rent.EndDate,
	}, nil
}
