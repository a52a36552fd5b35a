package main

import (
	"fmt"

	"github.com/syscoin/sysasset/internal/core/application"
	"github.com/syscoin/sysasset/internal/core/domain"
	assetlib "github.com/syscoin/sysasset/pkg/asset-lib"
	"github.com/urfave/cli/v2"
)

var (
	configCommand = cli.Command{
		Name:  "config",
		Usage: "Show the loaded configuration",
		Action: func(ctx *cli.Context) error {
			fmt.Println(cfg.String())
			return nil
		},
	}
	selectCommand = cli.Command{
		Name:  "select",
		Usage: "Select the wallet utxos covering the given native and asset targets",
		Flags: []cli.Flag{nativeAmountFlag, selectAssetsFlag, maxInputsFlag},
		Action: func(ctx *cli.Context) error {
			return selectCoins(ctx)
		},
	}
	sendCommand = cli.Command{
		Name:  "send",
		Usage: "Send one or more asset allocations",
		Flags: []cli.Flag{
			assetsFlag, nativeAmountFlag, nativeToFlag, feeFlag, broadcastFlag,
		},
		Action: func(ctx *cli.Context) error {
			return send(ctx)
		},
	}
	mintCommand = cli.Command{
		Name:  "mint",
		Usage: "Mint an asset allocation burnt on the NEVM side",
		Flags: []cli.Flag{assetFlag, proofFlag, feeFlag, broadcastFlag},
		Action: func(ctx *cli.Context) error {
			return mint(ctx)
		},
	}
	burnToNEVMCommand = cli.Command{
		Name:  "burn-nevm",
		Usage: "Burn an asset allocation to an NEVM address",
		Flags: []cli.Flag{guidFlag, amountFlag, nevmAddressFlag, feeFlag, broadcastFlag},
		Action: func(ctx *cli.Context) error {
			return burnToNEVM(ctx)
		},
	}
	wrapCommand = cli.Command{
		Name:  "wrap",
		Usage: fmt.Sprintf("Burn native coins to mint asset %d (SYSX)", assetlib.SYSXGuid),
		Flags: []cli.Flag{amountFlag, toFlag, feeFlag, broadcastFlag},
		Action: func(ctx *cli.Context) error {
			return wrap(ctx)
		},
	}
	unwrapCommand = cli.Command{
		Name:  "unwrap",
		Usage: fmt.Sprintf("Burn asset %d (SYSX) to credit native coins", assetlib.SYSXGuid),
		Flags: []cli.Flag{amountFlag, toFlag, feeFlag, broadcastFlag},
		Action: func(ctx *cli.Context) error {
			return unwrap(ctx)
		},
	}
	broadcastCommand = cli.Command{
		Name:  "broadcast",
		Usage: "Broadcast a signed transaction",
		Flags: []cli.Flag{txFlag},
		Action: func(ctx *cli.Context) error {
			return broadcast(ctx)
		},
	}
	verifyCommand = cli.Command{
		Name:  "verify",
		Usage: "Verify that a transaction produced the intended outputs",
		Flags: []cli.Flag{txidFlag, kindFlag, detailsFlag, waitFlag, confirmationsFlag},
		Action: func(ctx *cli.Context) error {
			return verify(ctx)
		},
	}
	historyCommand = cli.Command{
		Name:  "history",
		Usage: "List the built transactions, newest first",
		Flags: []cli.Flag{statusFlag},
		Action: func(ctx *cli.Context) error {
			return history(ctx)
		},
	}
)

func selectCoins(ctx *cli.Context) error {
	native := ctx.Int64(nativeAmountFlagName)
	targets, err := parseAssetTargets(ctx.StringSlice(assetFlagName))
	if err != nil {
		return err
	}
	if native <= 0 && len(targets) <= 0 {
		return fmt.Errorf("missing target, use --%s or --%s", nativeAmountFlagName, assetFlagName)
	}

	selection, svcErr := svc.SelectCoins(ctx.Context, native, targets, ctx.Int(maxInputsFlagName))
	if svcErr != nil {
		return svcErr
	}
	return printJSON(selection)
}

func send(ctx *cli.Context) error {
	params := cfg.NetworkParams()
	assets := make([]domain.AssetTriple, 0)
	for _, s := range ctx.StringSlice(assetFlagName) {
		asset, err := parseAssetTriple(s, params)
		if err != nil {
			return err
		}
		assets = append(assets, asset)
	}

	nativeTo := ctx.String(nativeToFlagName)
	if nativeTo != "" {
		if err := validateAddress(nativeTo, params); err != nil {
			return err
		}
	}

	intent, err := domain.NewSendIntent(assets, ctx.Int64(nativeAmountFlagName), nativeTo)
	if err != nil {
		return err
	}
	return buildAndMaybeBroadcast(ctx, intent)
}

func mint(ctx *cli.Context) error {
	asset, err := parseAssetTriple(ctx.String(assetFlagName), cfg.NetworkParams())
	if err != nil {
		return err
	}
	proof, err := readProof(ctx.Path(proofFlagName))
	if err != nil {
		return err
	}

	intent, err := domain.NewMintIntent(asset, proof)
	if err != nil {
		return err
	}
	return buildAndMaybeBroadcast(ctx, intent)
}

func burnToNEVM(ctx *cli.Context) error {
	intent, err := domain.NewBurnToNEVMIntent(
		ctx.Uint64(guidFlagName), ctx.Int64(amountFlagName), ctx.String(nevmAddressFlagName),
	)
	if err != nil {
		return err
	}
	return buildAndMaybeBroadcast(ctx, intent)
}

func wrap(ctx *cli.Context) error {
	to := ctx.String(toFlagName)
	if err := validateAddress(to, cfg.NetworkParams()); err != nil {
		return err
	}

	intent, err := domain.NewWrapIntent(ctx.Int64(amountFlagName), to)
	if err != nil {
		return err
	}
	return buildAndMaybeBroadcast(ctx, intent)
}

func unwrap(ctx *cli.Context) error {
	to := ctx.String(toFlagName)
	if err := validateAddress(to, cfg.NetworkParams()); err != nil {
		return err
	}

	intent, err := domain.NewUnwrapIntent(domain.AssetTriple{
		Guid:        assetlib.SYSXGuid,
		Amount:      ctx.Int64(amountFlagName),
		Destination: to,
	})
	if err != nil {
		return err
	}
	return buildAndMaybeBroadcast(ctx, intent)
}

func buildAndMaybeBroadcast(ctx *cli.Context, intent *domain.Intent) error {
	if ctx.IsSet(feeFlagName) {
		var err error
		intent, err = intent.WithFee(ctx.Int64(feeFlagName))
		if err != nil {
			return err
		}
	}

	built, svcErr := svc.BuildTransaction(ctx.Context, intent)
	if svcErr != nil {
		return svcErr
	}

	if !ctx.Bool(broadcastFlagName) {
		return printJSON(built)
	}

	txid, svcErr := svc.Broadcast(ctx.Context, built.SignedTx)
	if svcErr != nil {
		return svcErr
	}
	return printJSON(struct {
		*application.BuiltTx
		BroadcastTxid string `json:"broadcast_txid"`
	}{built, txid})
}

func broadcast(ctx *cli.Context) error {
	txid, svcErr := svc.Broadcast(ctx.Context, ctx.String(txFlagName))
	if svcErr != nil {
		return svcErr
	}
	fmt.Println(txid)
	return nil
}

func verify(ctx *cli.Context) error {
	txid := ctx.String(txidFlagName)
	details, err := parseDetails(ctx.String(detailsFlagName), cfg.NetworkParams())
	if err != nil {
		return err
	}

	kind := domain.TxKind(-1)
	if len(details) > 0 {
		if !ctx.IsSet(kindFlagName) {
			return fmt.Errorf("--%s is required with --%s", kindFlagName, detailsFlagName)
		}
		kind, err = domain.ParseTxKind(ctx.String(kindFlagName))
		if err != nil {
			return err
		}
	}

	if !ctx.Bool(waitFlagName) {
		if svcErr := svc.VerifyOutputs(ctx.Context, txid, kind, details); svcErr != nil {
			return svcErr
		}
		fmt.Printf("tx %s verified\n", txid)
		return nil
	}
	if len(details) > 0 {
		return fmt.Errorf("--%s only verifies the outputs recorded in history", waitFlagName)
	}

	scheduler := cfg.SchedulerService()
	scheduler.Start()

	confirmations := ctx.Int64(confirmationsFlagName)
	fmt.Printf("waiting for tx %s to reach %d confirmations\n", txid, confirmations)
	select {
	case <-ctx.Context.Done():
		return ctx.Context.Err()
	case err := <-svc.VerifyWhenConfirmed(ctx.Context, txid, confirmations):
		if err != nil {
			return err
		}
	}
	fmt.Printf("tx %s verified\n", txid)
	return nil
}

func history(ctx *cli.Context) error {
	statuses, err := parseStatuses(ctx.StringSlice(statusFlagName))
	if err != nil {
		return err
	}

	entries, svcErr := svc.History(ctx.Context, statuses...)
	if svcErr != nil {
		return svcErr
	}
	return printJSON(entries)
}
