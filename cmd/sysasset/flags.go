package main

import (
	"github.com/urfave/cli/v2"
)

const (
	nativeAmountFlagName  = "native-amount"
	nativeToFlagName      = "native-to"
	assetFlagName         = "asset"
	guidFlagName          = "guid"
	amountFlagName        = "amount"
	toFlagName            = "to"
	nevmAddressFlagName   = "nevm-address"
	proofFlagName         = "proof"
	feeFlagName           = "fee"
	broadcastFlagName     = "broadcast"
	maxInputsFlagName     = "max-inputs"
	txFlagName            = "tx"
	txidFlagName          = "txid"
	kindFlagName          = "kind"
	detailsFlagName       = "details"
	waitFlagName          = "wait"
	confirmationsFlagName = "confirmations"
	statusFlagName        = "status"

	defaultConfirmations = 1
)

var (
	nativeAmountFlag = &cli.Int64Flag{
		Name:  nativeAmountFlagName,
		Usage: "native amount in satoshis",
	}
	nativeToFlag = &cli.StringFlag{
		Name:  nativeToFlagName,
		Usage: "address receiving the native amount",
	}
	assetsFlag = &cli.StringSliceFlag{
		Name:     assetFlagName,
		Usage:    "asset to send in the form guid:amount:address, can be repeated",
		Required: true,
	}
	assetFlag = &cli.StringFlag{
		Name:     assetFlagName,
		Usage:    "asset to mint in the form guid:amount:address",
		Required: true,
	}
	selectAssetsFlag = &cli.StringSliceFlag{
		Name:  assetFlagName,
		Usage: "asset target in the form guid:amount, can be repeated",
	}
	guidFlag = &cli.Uint64Flag{
		Name:     guidFlagName,
		Usage:    "asset guid",
		Required: true,
	}
	amountFlag = &cli.Int64Flag{
		Name:     amountFlagName,
		Usage:    "amount in satoshis",
		Required: true,
	}
	toFlag = &cli.StringFlag{
		Name:     toFlagName,
		Usage:    "destination address",
		Required: true,
	}
	nevmAddressFlag = &cli.StringFlag{
		Name:     nevmAddressFlagName,
		Usage:    "NEVM address receiving the burnt amount, 0x prefixed hex",
		Required: true,
	}
	proofFlag = &cli.PathFlag{
		Name:     proofFlagName,
		Usage:    "path to the JSON encoded SPV proof of the NEVM burn",
		Required: true,
	}
	feeFlag = &cli.Int64Flag{
		Name:  feeFlagName,
		Usage: "fixed fee in satoshis, estimated if unset",
	}
	broadcastFlag = &cli.BoolFlag{
		Name:  broadcastFlagName,
		Usage: "broadcast the transaction once built",
	}
	maxInputsFlag = &cli.IntFlag{
		Name:  maxInputsFlagName,
		Usage: "maximum number of inputs to select, defaults to the configured one",
	}
	txFlag = &cli.StringFlag{
		Name:     txFlagName,
		Usage:    "hex encoded signed transaction",
		Required: true,
	}
	txidFlag = &cli.StringFlag{
		Name:     txidFlagName,
		Usage:    "id of the transaction to verify",
		Required: true,
	}
	kindFlag = &cli.StringFlag{
		Name: kindFlagName,
		Usage: "tx kind (allocation-send, allocation-mint, allocation-burn-to-nevm, " +
			"wrap, unwrap), required with --details",
	}
	detailsFlag = &cli.StringFlag{
		Name: detailsFlagName,
		Usage: "JSON encoded list of intended outputs " +
			"[{\"destination\",\"guid\",\"amount\",\"burned\"}], sourced from history if unset",
	}
	waitFlag = &cli.BoolFlag{
		Name:  waitFlagName,
		Usage: "wait for the transaction to be confirmed before verifying",
	}
	confirmationsFlag = &cli.Int64Flag{
		Name:  confirmationsFlagName,
		Usage: "number of confirmations to wait for",
		Value: defaultConfirmations,
	}
	statusFlag = &cli.StringSliceFlag{
		Name:  statusFlagName,
		Usage: "filter by status (built, broadcast, verified, failed), can be repeated",
	}
)
