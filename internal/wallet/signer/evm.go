package signer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/chapool/txengine/internal/wallet/fee"
)

// SignEVM builds a legacy or EIP-1559 transaction from req and signs it with privateKey.
// The key is only used locally.
func SignEVM(req *EVMRequest, privateKey []byte) (*SignedTransaction, error) {
	if req == nil {
		return nil, signingError("nil request", nil)
	}
	if req.ChainID == nil || req.ChainID.Sign() <= 0 {
		return nil, signingError("invalid chain id", errors.Errorf("%v", req.ChainID))
	}

	// Convert private key to ECDSA
	ecdsaPrivateKey, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, signingError("invalid secp256k1 private key", err)
	}

	// Verify from address matches private key
	derivedAddress := crypto.PubkeyToAddress(ecdsaPrivateKey.PublicKey)
	if req.From != (common.Address{}) && derivedAddress != req.From {
		return nil, signingError("from address does not match private key", errors.Errorf("want %s, key is %s", req.From.Hex(), derivedAddress.Hex()))
	}

	value := req.Value
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 {
		return nil, signingError("negative value", nil)
	}

	var txData types.TxData
	switch req.Fee.Kind {
	case fee.KindLegacy:
		if req.Fee.GasPrice == nil {
			return nil, signingError("legacy quote without gas price", nil)
		}
		txData = &types.LegacyTx{
			Nonce:    req.Nonce,
			GasPrice: req.Fee.GasPrice,
			Gas:      req.Fee.GasLimit,
			To:       req.To,
			Value:    value,
			Data:     req.Data,
		}
	case fee.KindEIP1559:
		if req.Fee.MaxFeePerGas == nil || req.Fee.PriorityFee == nil {
			return nil, signingError("EIP-1559 quote without fee caps", nil)
		}
		txData = &types.DynamicFeeTx{
			ChainID:   req.ChainID,
			Nonce:     req.Nonce,
			GasTipCap: req.Fee.PriorityFee,
			GasFeeCap: req.Fee.MaxFeePerGas,
			Gas:       req.Fee.GasLimit,
			To:        req.To,
			Value:     value,
			Data:      req.Data,
		}
	default:
		return nil, signingError("unknown transaction type "+string(req.Fee.Kind), nil)
	}

	// Sign transaction, legacy transactions get EIP-155 replay protection
	//nolint:varnamelen // tx is a common abbreviation for transaction
	tx := types.NewTx(txData)
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(req.ChainID), ecdsaPrivateKey)
	if err != nil {
		return nil, signingError("failed to sign transaction", err)
	}

	// Encode transaction: RLP for legacy, typed envelope otherwise
	txBytes, err := signedTx.MarshalBinary()
	if err != nil {
		return nil, signingError("failed to marshal transaction", err)
	}

	return &SignedTransaction{
		Raw:  txBytes,
		Hash: signedTx.Hash().Hex(),
	}, nil
}

// DecodeEVM parses a raw signed transaction and recovers its sender.
func DecodeEVM(raw []byte) (*types.Transaction, common.Address, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, common.Address{}, errors.Wrap(err, "failed to decode transaction")
	}

	sender, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return nil, common.Address{}, errors.Wrap(err, "failed to recover sender")
	}

	return tx, sender, nil
}
