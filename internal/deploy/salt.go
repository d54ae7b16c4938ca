// internal/deploy/salt.go
package deploy

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// maxAttempts bounds the brute-force search. Past this the caller must
// restart the workflow with a fresh timestamp-seeded base.
const maxAttempts = 256

// ErrSearchExhausted is returned when no candidate salt produced an
// address below the comparison address within maxAttempts iterations.
var ErrSearchExhausted = errors.New("address search exhausted")

// SaltResult is a salt whose CREATE2 address beats the comparison
// address, plus the address itself.
type SaltResult struct {
	Salt             common.Hash
	PredictedAddress common.Address
}

// FindSalt searches for a deployment salt whose deterministically
// derived contract address is numerically below comparisonAddr.
//
// The search chain: a per-call base is keccak256(timestamp, deployer);
// each candidate salt is keccak256(base, i); the factory's effective
// salt is keccak256(deployer, candidate); the predicted address follows
// the standard CREATE2 formula over the factory address, the effective
// salt and the init-code hash. Addresses compare as big-endian unsigned
// integers.
func FindSalt(deployer, factory, comparisonAddr common.Address, bytecode, constructorArgs []byte) (*SaltResult, error) {
	return findSaltAt(time.Now().UnixNano(), deployer, factory, comparisonAddr, bytecode, constructorArgs)
}

func findSaltAt(timestamp int64, deployer, factory, comparisonAddr common.Address, bytecode, constructorArgs []byte) (*SaltResult, error) {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(timestamp))
	base := keccak256(ts[:], deployer.Bytes())

	initCodeHash := keccak256(bytecode, constructorArgs)

	for i := 0; i < maxAttempts; i++ {
		candidate := keccak256(base, []byte{byte(i)})
		effective := keccak256(deployer.Bytes(), candidate)

		var salt [32]byte
		copy(salt[:], effective)
		predicted := crypto.CreateAddress2(factory, salt, initCodeHash)

		if bytes.Compare(predicted.Bytes(), comparisonAddr.Bytes()) < 0 {
			return &SaltResult{
				Salt:             common.BytesToHash(candidate),
				PredictedAddress: predicted,
			}, nil
		}
	}
	return nil, ErrSearchExhausted
}

func keccak256(parts ...[]byte) []byte {
	hasher := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		hasher.Write(p)
	}
	return hasher.Sum(nil)
}
