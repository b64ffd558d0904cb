package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/moneropulse/xvb-arbiter/internal/api"
	"github.com/moneropulse/xvb-arbiter/internal/clients/proxyclient"
	"github.com/moneropulse/xvb-arbiter/internal/clients/workerclient"
	"github.com/moneropulse/xvb-arbiter/internal/clients/xvbclient"
	"github.com/moneropulse/xvb-arbiter/internal/collectors"
	"github.com/moneropulse/xvb-arbiter/internal/config"
	"github.com/moneropulse/xvb-arbiter/internal/db"
	dbmodel "github.com/moneropulse/xvb-arbiter/internal/db/model"
	"github.com/moneropulse/xvb-arbiter/internal/observability/metrics"
	"github.com/moneropulse/xvb-arbiter/internal/observability/tracing"
	"github.com/moneropulse/xvb-arbiter/internal/services"
	"github.com/moneropulse/xvb-arbiter/internal/state"
)

func StartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Starts the p2pool/xvb switching arbiter",
		Args:  cobra.ExactArgs(0),
		RunE:  start,
	}

	return cmd
}

func start(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	err = dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up arbiter db model")
	}

	var dbClient db.DbInterface
	dbClient, err = db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	dbClient = db.NewDbWithMetrics(dbClient)

	store := state.NewStore(dbClient, &cfg.Poller, cfg.Algo.Tiers)
	if err := store.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("error while warm loading state")
	}

	collector := collectors.New(&cfg.P2Pool)
	proxyClient := proxyclient.NewProxyClient(&cfg.Proxy)
	workerClient := workerclient.NewWorkerClient(&cfg.Fleet)
	xvbClient := xvbclient.NewXvbClient(&cfg.Xvb, cfg.Pools.WalletAddress)

	switcher := services.NewSwitcher(cfg, proxyClient, workerClient, store)
	service := services.NewService(cfg, store, collector, proxyClient, workerClient, xvbClient, switcher)

	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	statusAPI := api.New(&cfg.API, store, dbClient)
	go func() {
		if err := statusAPI.Start(ctx); err != nil {
			log.Error().Err(err).Msg("status API stopped")
		}
	}()

	service.StartArbiter(ctx)
	return nil
}
