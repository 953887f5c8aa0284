package chain

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrReadOnlyWallet is returned when a write is attempted without a signing key
var ErrReadOnlyWallet = errors.New("wallet is read-only: no private key configured")

// Wallet is the account whose position is shown, optionally able to sign
type Wallet struct {
	address common.Address
	key     *ecdsa.PrivateKey
}

// NewWallet creates a wallet from a hex private key, or a read-only wallet
// from an address when no key is given. When both are set they must agree.
func NewWallet(privateKeyHex, account string) (*Wallet, error) {
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")

	if privateKeyHex == "" {
		if !common.IsHexAddress(account) {
			return nil, fmt.Errorf("invalid account address: %q", account)
		}
		return &Wallet{address: common.HexToAddress(account)}, nil
	}

	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	address := crypto.PubkeyToAddress(key.PublicKey)
	if account != "" && common.HexToAddress(account) != address {
		return nil, fmt.Errorf("account %s does not match private key address %s", account, address.Hex())
	}

	return &Wallet{address: address, key: key}, nil
}

// Address returns the wallet address
func (w *Wallet) Address() common.Address {
	return w.address
}

// CanSign reports whether the wallet holds a private key
func (w *Wallet) CanSign() bool {
	return w.key != nil
}
