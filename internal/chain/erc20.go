package chain

import (
	"fmt"
	"math/big"

	"golang.org/x/crypto/sha3"
)

const wordSize = 32

// Standard ERC-20 function signatures used by the wallet.
//
//	balanceOf(address) → 0x70a08231
//	transfer(a,u256)   → 0xa9059cbb
var (
	balanceOfSelector = selector("balanceOf(address)")
	transferSelector  = selector("transfer(address,uint256)")
)

// maxUint256 bounds encodable amounts.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

func selector(signature string) [4]byte {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(signature))
	sum := hasher.Sum(nil)

	var sel [4]byte
	copy(sel[:], sum[:4])
	return sel
}

// EncodeBalanceOf builds the calldata for balanceOf(owner).
func EncodeBalanceOf(owner Address) []byte {
	data := make([]byte, 4+wordSize)
	copy(data, balanceOfSelector[:])
	copy(data[4+wordSize-AddressLength:], owner[:])
	return data
}

// EncodeTransfer builds the calldata for transfer(to, amount).
func EncodeTransfer(to Address, amount *big.Int) ([]byte, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("transfer amount must be non-negative")
	}
	if amount.Cmp(maxUint256) > 0 {
		return nil, fmt.Errorf("transfer amount overflows uint256")
	}

	data := make([]byte, 4+2*wordSize)
	copy(data, transferSelector[:])
	copy(data[4+wordSize-AddressLength:4+wordSize], to[:])
	amount.FillBytes(data[4+wordSize : 4+2*wordSize])
	return data, nil
}

// DecodeUint256 extracts a uint256 return value from call output.
func DecodeUint256(output []byte) (*big.Int, error) {
	if len(output) < wordSize {
		return nil, fmt.Errorf("call output too short: %d bytes", len(output))
	}
	return new(big.Int).SetBytes(output[:wordSize]), nil
}
