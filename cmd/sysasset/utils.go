package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/syscoin/sysasset/internal/core/domain"
	assetlib "github.com/syscoin/sysasset/pkg/asset-lib"
	"github.com/syscoin/sysasset/pkg/asset-lib/allocation"
)

// parseAssetTriple parses a guid:amount:address triple.
func parseAssetTriple(s string, params *chaincfg.Params) (domain.AssetTriple, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return domain.AssetTriple{}, fmt.Errorf("invalid asset %q, must be guid:amount:address", s)
	}
	guid, amount, err := parseGuidAmount(parts[0], parts[1])
	if err != nil {
		return domain.AssetTriple{}, err
	}
	if err := validateAddress(parts[2], params); err != nil {
		return domain.AssetTriple{}, err
	}
	return domain.AssetTriple{Guid: guid, Amount: amount, Destination: parts[2]}, nil
}

// parseAssetTargets parses a list of guid:amount targets, summing the
// amounts of repeated guids.
func parseAssetTargets(list []string) (map[uint64]int64, error) {
	targets := make(map[uint64]int64)
	for _, s := range list {
		parts := strings.Split(strings.TrimSpace(s), ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid asset target %q, must be guid:amount", s)
		}
		guid, amount, err := parseGuidAmount(parts[0], parts[1])
		if err != nil {
			return nil, err
		}
		targets[guid] += amount
	}
	return targets, nil
}

func parseGuidAmount(guidStr, amountStr string) (uint64, int64, error) {
	guid, err := strconv.ParseUint(guidStr, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid asset guid %q", guidStr)
	}
	amount, err := strconv.ParseInt(amountStr, 10, 64)
	if err != nil || amount <= 0 || amount > assetlib.MaxMoney {
		return 0, 0, fmt.Errorf("invalid amount %q for asset %d", amountStr, guid)
	}
	return guid, amount, nil
}

func validateAddress(address string, params *chaincfg.Params) error {
	if _, err := assetlib.DecodeAddress(address, params); err != nil {
		return err
	}
	return nil
}

func readProof(path string) (allocation.SPVProof, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return allocation.SPVProof{}, fmt.Errorf("failed to read proof: %w", err)
	}
	var proof allocation.SPVProof
	if err := json.Unmarshal(buf, &proof); err != nil {
		return allocation.SPVProof{}, fmt.Errorf("invalid proof: %w", err)
	}
	return proof, nil
}

func parseDetails(s string, params *chaincfg.Params) ([]domain.IntendedOutput, error) {
	if s == "" {
		return nil, nil
	}
	var details []domain.IntendedOutput
	if err := json.Unmarshal([]byte(s), &details); err != nil {
		return nil, fmt.Errorf("invalid details: %w", err)
	}
	for _, d := range details {
		if d.Destination == "" {
			continue
		}
		if err := validateAddress(d.Destination, params); err != nil {
			return nil, err
		}
	}
	return details, nil
}

func parseStatuses(list []string) ([]domain.TxStatus, error) {
	statuses := make([]domain.TxStatus, 0, len(list))
	for _, s := range list {
		status := domain.TxStatus(strings.ToLower(strings.TrimSpace(s)))
		switch status {
		case domain.TxStatusBuilt, domain.TxStatusBroadcast,
			domain.TxStatusVerified, domain.TxStatusFailed:
		default:
			return nil, fmt.Errorf("unknown status %q", s)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func printJSON(resp interface{}) error {
	jsonBytes, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		return err
	}
	fmt.Println(string(jsonBytes))
	return nil
}
