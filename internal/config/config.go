package config

import (
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Config carries the process configuration. Rates arrive as human-oriented
// percentages (e.g. "5.0") and are converted to basis points here; all core
// math downstream stays integer.
type Config struct {
	Addr      string
	LogLevel  string
	LogFormat string

	Owner common.Address
	FeeTo common.Address

	MinRateBps        uint64
	MaxRateBps        uint64
	ProtocolCutBps    uint64
	ResolutionFeeBps  uint64
	SuccessMultiplier uint64

	RewardWindow time.Duration
	Durations    []time.Duration
	MinDeposit   *big.Int
}

// FromEnv builds the configuration from environment variables, applying
// defaults where a variable is unset. OWNER_ADDRESS is required.
func FromEnv() (*Config, error) {
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":1337"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "text"
	}

	ownerStr := os.Getenv("OWNER_ADDRESS")
	if ownerStr == "" {
		return nil, ErrMissingOwner
	}
	if !common.IsHexAddress(ownerStr) {
		return nil, fmt.Errorf("%w: OWNER_ADDRESS", ErrInvalidAddress)
	}
	owner := common.HexToAddress(ownerStr)

	feeTo := owner
	if s := os.Getenv("FEE_TO_ADDRESS"); s != "" {
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("%w: FEE_TO_ADDRESS", ErrInvalidAddress)
		}
		feeTo = common.HexToAddress(s)
	}

	minRate, err := percentBps("MIN_RATE_PERCENT", "5.0")
	if err != nil {
		return nil, err
	}
	maxRate, err := percentBps("MAX_RATE_PERCENT", "40.0")
	if err != nil {
		return nil, err
	}
	if minRate > maxRate {
		return nil, fmt.Errorf("%w: MIN_RATE_PERCENT above MAX_RATE_PERCENT", ErrInvalidPercent)
	}
	cut, err := percentBps("PROTOCOL_CUT_PERCENT", "10.0")
	if err != nil {
		return nil, err
	}
	resFee, err := percentBps("RESOLUTION_FEE_PERCENT", "1.0")
	if err != nil {
		return nil, err
	}

	mult := uint64(10)
	if s := os.Getenv("SUCCESS_MULTIPLIER"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil || !d.IsInteger() || d.Sign() <= 0 {
			return nil, fmt.Errorf("%w: SUCCESS_MULTIPLIER", ErrInvalidAmount)
		}
		mult = uint64(d.IntPart())
	}

	window := 7 * 24 * time.Hour
	if s := os.Getenv("REWARD_WINDOW"); s != "" {
		var err error
		window, err = time.ParseDuration(s)
		// reward rates stream in whole seconds; a shorter window would
		// truncate to a zero-length period
		if err != nil || window < time.Second {
			return nil, fmt.Errorf("%w: REWARD_WINDOW", ErrInvalidDuration)
		}
	}

	durations := []time.Duration{7 * 24 * time.Hour, 14 * 24 * time.Hour, 28 * 24 * time.Hour}
	if s := os.Getenv("RENTAL_DURATIONS"); s != "" {
		durations = durations[:0]
		for _, part := range strings.Split(s, ",") {
			d, err := time.ParseDuration(strings.TrimSpace(part))
			if err != nil || d <= 0 {
				return nil, fmt.Errorf("%w: RENTAL_DURATIONS %q", ErrInvalidDuration, part)
			}
			durations = append(durations, d)
		}
	}

	minDeposit := big.NewInt(1)
	if s := os.Getenv("MIN_DEPOSIT"); s != "" {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok || v.Sign() <= 0 {
			return nil, fmt.Errorf("%w: MIN_DEPOSIT", ErrInvalidAmount)
		}
		minDeposit = v
	}

	return &Config{
		Addr:              addr,
		LogLevel:          logLevel,
		LogFormat:         logFormat,
		Owner:             owner,
		FeeTo:             feeTo,
		MinRateBps:        minRate,
		MaxRateBps:        maxRate,
		ProtocolCutBps:    cut,
		ResolutionFeeBps:  resFee,
		SuccessMultiplier: mult,
		RewardWindow:      window,
		Durations:         durations,
		MinDeposit:        minDeposit,
	}, nil
}

// percentBps parses a decimal percentage ("2.5") into basis points (250).
func percentBps(envVar, def string) (uint64, error) {
	s := os.Getenv(envVar)
	if s == "" {
		s = def
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidPercent, envVar)
	}
	bps := d.Mul(decimal.NewFromInt(100))
	if !bps.IsInteger() || bps.Sign() < 0 || bps.GreaterThan(decimal.NewFromInt(1_000_000)) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidPercent, envVar)
	}
	return uint64(bps.IntPart()), nil
}
