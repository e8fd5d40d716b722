package main

import (
	"fmt"
	"time"

	redisStorage "palma-lending/internal/adapter/storage/redis"
	"palma-lending/internal/core/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

const (
	assetKey    = "asset"
	priceKey    = "price"
	decimalsKey = "decimals"
)

func oracleCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "oracle",
		Short: "Publish and inspect oracle rounds",
	}
	c.AddCommand(pushCommand(), latestCommand())
	return c
}

func pushCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "push",
		Short: "Publishes a new price round for an asset",
		RunE:  pushFunc,
	}
	flags := c.Flags()
	flags.String(assetKey, "", "Token address (required)")
	flags.String(priceKey, "", "USD price, e.g. 2000.50 (required)")
	flags.Uint8(decimalsKey, 8, "Feed decimals when the token is not in the config")
	_ = c.MarkFlagRequired(assetKey)
	_ = c.MarkFlagRequired(priceKey)
	return c
}

func latestCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "latest",
		Short: "Prints the latest round for an asset",
		RunE:  latestFunc,
	}
	c.Flags().String(assetKey, "", "Token address (required)")
	_ = c.MarkFlagRequired(assetKey)
	return c
}

func pushFunc(c *cobra.Command, _ []string) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	asset, err := assetFlag(c)
	if err != nil {
		return err
	}

	flags := c.Flags()
	price, err := flags.GetString(priceKey)
	if err != nil {
		return err
	}
	decimals, err := flags.GetUint8(decimalsKey)
	if err != nil {
		return err
	}
	for _, t := range cfg.Tokens {
		if t.Asset() == asset {
			decimals = t.FeedDecimals
			break
		}
	}

	answer, err := redisStorage.ParseAnswer(price, decimals)
	if err != nil {
		return err
	}

	ctx := c.Context()
	client, err := redisStorage.NewClient(ctx, cfg.Redis, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer client.Close()

	round, err := redisStorage.NewRoundStore(client).PushRound(ctx, asset, answer, time.Now())
	if err != nil {
		return err
	}
	printRound(c, asset, round)
	return nil
}

func latestFunc(c *cobra.Command, _ []string) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	asset, err := assetFlag(c)
	if err != nil {
		return err
	}

	ctx := c.Context()
	client, err := redisStorage.NewClient(ctx, cfg.Redis, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer client.Close()

	round, err := redisStorage.NewRoundStore(client).LatestRound(ctx, asset)
	if err != nil {
		return err
	}
	printRound(c, asset, round)
	return nil
}

func assetFlag(c *cobra.Command) (domain.Asset, error) {
	raw, err := c.Flags().GetString(assetKey)
	if err != nil {
		return common.Address{}, err
	}
	asset, ok := domain.ParseAddress(raw)
	if !ok {
		return asset, fmt.Errorf("--%s: invalid address %q", assetKey, raw)
	}
	return asset, nil
}

func printRound(c *cobra.Command, asset domain.Asset, round domain.RoundData) {
	fmt.Fprintf(c.OutOrStdout(), "asset=%s round=%d answer=%s updated_at=%s\n",
		asset.Hex(), round.RoundID, round.Answer.String(), round.UpdatedAt.UTC().Format(time.RFC3339))
}
