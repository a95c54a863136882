package config

import "errors"

// ErrMissingOwner indicates that the required OWNER_ADDRESS variable is not
// set in the environment.
var ErrMissingOwner = errors.New("missing OWNER_ADDRESS environment variable")

// ErrInvalidAddress indicates an address variable that is not valid hex.
var ErrInvalidAddress = errors.New("invalid address")

// ErrInvalidPercent indicates a rate variable that does not parse to a whole
// number of basis points.
var ErrInvalidPercent = errors.New("invalid percentage")

// ErrInvalidDuration indicates a duration variable that does not parse or is
// not positive.
var ErrInvalidDuration = errors.New("invalid duration")

// ErrInvalidAmount indicates a numeric variable that does not parse or is
// not positive.
var ErrInvalidAmount = errors.New("invalid amount")
