package assetlib

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/btcsuite/btcd/chaincfg"
)

// Only the address encoding fields are set. The params are never registered
// with chaincfg, so addresses must be decoded with DecodeAddress.
var (
	SyscoinMainNetParams = chaincfg.Params{
		Name:             "mainnet",
		PubKeyHashAddrID: 0x3f,
		ScriptHashAddrID: 0x05,
		PrivateKeyID:     0x80,
		Bech32HRPSegwit:  "sys",
	}
	SyscoinTestNetParams = chaincfg.Params{
		Name:             "testnet",
		PubKeyHashAddrID: 0x41,
		ScriptHashAddrID: 0xc4,
		PrivateKeyID:     0xef,
		Bech32HRPSegwit:  "tsys",
	}
	SyscoinRegTestParams = chaincfg.Params{
		Name:             "regtest",
		PubKeyHashAddrID: 0x41,
		ScriptHashAddrID: 0xc4,
		PrivateKeyID:     0xef,
		Bech32HRPSegwit:  "scrt",
	}
)

func NetworkParams(network string) (*chaincfg.Params, error) {
	switch strings.ToLower(network) {
	case SyscoinMainNetParams.Name, "main", "":
		return &SyscoinMainNetParams, nil
	case SyscoinTestNetParams.Name, "test":
		return &SyscoinTestNetParams, nil
	case SyscoinRegTestParams.Name:
		return &SyscoinRegTestParams, nil
	default:
		return nil, fmt.Errorf("unknown network %s", network)
	}
}

// DecodeAddress decodes a base58 or segwit address of the given network.
func DecodeAddress(address string, params *chaincfg.Params) (btcutil.Address, error) {
	if params == nil {
		return nil, fmt.Errorf("missing network params")
	}

	hrp := params.Bech32HRPSegwit + "1"
	if len(address) > len(hrp) && strings.EqualFold(address[:len(hrp)], hrp) {
		return decodeSegwitAddress(address, params)
	}

	payload, version, err := base58.CheckDecode(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address %s: %w", address, err)
	}
	if len(payload) != 20 {
		return nil, fmt.Errorf("invalid address %s: bad payload length %d", address, len(payload))
	}
	switch version {
	case params.PubKeyHashAddrID:
		return btcutil.NewAddressPubKeyHash(payload, params)
	case params.ScriptHashAddrID:
		return btcutil.NewAddressScriptHashFromHash(payload, params)
	default:
		return nil, fmt.Errorf("address %s is not for network %s", address, params.Name)
	}
}

func decodeSegwitAddress(address string, params *chaincfg.Params) (btcutil.Address, error) {
	hrp, data, encoding, err := bech32.DecodeGeneric(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address %s: %w", address, err)
	}
	if hrp != params.Bech32HRPSegwit {
		return nil, fmt.Errorf("address %s is not for network %s", address, params.Name)
	}
	if len(data) < 1 {
		return nil, fmt.Errorf("invalid address %s: missing witness version", address)
	}

	version := data[0]
	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("invalid address %s: %w", address, err)
	}

	switch {
	case version == 0 && encoding != bech32.Version0:
		return nil, fmt.Errorf("invalid address %s: witness v0 must use bech32", address)
	case version > 0 && encoding != bech32.VersionM:
		return nil, fmt.Errorf("invalid address %s: witness v%d must use bech32m", address, version)
	}

	switch version {
	case 0:
		switch len(program) {
		case 20:
			return btcutil.NewAddressWitnessPubKeyHash(program, params)
		case 32:
			return btcutil.NewAddressWitnessScriptHash(program, params)
		}
		return nil, fmt.Errorf("invalid address %s: bad program length %d", address, len(program))
	case 1:
		return btcutil.NewAddressTaproot(program, params)
	default:
		return nil, fmt.Errorf("invalid address %s: unsupported witness version %d", address, version)
	}
}
