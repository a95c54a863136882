package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// PermitDigest returns the message an owner signs to authorize spender over
// value until deadline at the given nonce. The digest binds the token's
// domain separator so a signature cannot be replayed against another token.
func (t *Token) PermitDigest(owner, spender common.Address, value *big.Int, nonce uint64, deadline int64) common.Hash {
	return crypto.Keccak256Hash(
		t.domainSeparator.Bytes(),
		owner.Bytes(),
		spender.Bytes(),
		common.BigToHash(value).Bytes(),
		common.BigToHash(new(big.Int).SetUint64(nonce)).Bytes(),
		common.BigToHash(big.NewInt(deadline)).Bytes(),
	)
}

// Permit applies a detached authorization: it validates the signature over
// (owner, spender, value, nonce, deadline), consumes the owner's nonce and
// sets the allowance. sig is a 65-byte [R || S || V] secp256k1 signature over
// PermitDigest.
func (t *Token) Permit(owner, spender common.Address, value *big.Int, deadline int64, sig []byte) error {
	if value.Sign() < 0 {
		return ErrNegativeAmount
	}
	if t.now().Unix() > deadline {
		return ErrExpired
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	nonce := t.nonces[owner]
	digest := t.PermitDigest(owner, spender, value, nonce, deadline)

	if len(sig) != crypto.SignatureLength {
		return ErrInvalidSignature
	}
	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return ErrInvalidSignature
	}
	if crypto.PubkeyToAddress(*pub) != owner {
		return ErrInvalidSignature
	}

	t.nonces[owner] = nonce + 1
	t.setAllowance(owner, spender, new(big.Int).Set(value))
	return nil
}
