// Package market implements the market data bounded context: exchange
// connectors and the concurrent price aggregator.
package market

import (
	"context"
	"time"

	"github.com/fd1az/crossarb/business/market/app"
	marketDI "github.com/fd1az/crossarb/business/market/di"
	"github.com/fd1az/crossarb/business/market/infra/rest"
	"github.com/fd1az/crossarb/business/market/infra/stream"
	"github.com/fd1az/crossarb/internal/config"
	"github.com/fd1az/crossarb/internal/di"
	"github.com/fd1az/crossarb/internal/logger"
	"github.com/fd1az/crossarb/internal/monolith"
	"github.com/fd1az/crossarb/internal/symbol"
)

// Module implements the market data bounded context.
type Module struct{}

// RegisterServices registers all market services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register the exchange gateways - private dependency
	di.RegisterToken(c, marketDI.ExchangeGateways, func(sr di.ServiceRegistry) *marketDI.Gateways {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(*logger.Logger)
		symbols := sr.Get("symbols").(*symbol.Table)

		gateways := &marketDI.Gateways{
			Exchanges: make([]app.Exchange, 0, len(cfg.Exchanges)),
			Feeds:     make([]*stream.Feed, 0, len(cfg.Exchanges)),
		}

		for _, exCfg := range cfg.Exchanges {
			gateway, err := rest.New(exCfg, log.Slog())
			if err != nil {
				panic("failed to create exchange gateway " + exCfg.ID + ": " + err.Error())
			}

			// Venues with a streaming endpoint get fresh quotes layered
			// over the REST gateway.
			if exCfg.WebSocketURL != "" {
				feed, err := stream.NewFeed(exCfg, symbols.Symbols(), log.Slog())
				if err != nil {
					panic("failed to create ticker feed " + exCfg.ID + ": " + err.Error())
				}
				gateways.Feeds = append(gateways.Feeds, feed)
				gateways.Exchanges = append(gateways.Exchanges, stream.WithFeed(gateway, feed))
				continue
			}

			gateways.Exchanges = append(gateways.Exchanges, gateway)
		}

		return gateways
	})

	// Register the Aggregator (public - exposed to other modules)
	di.RegisterToken(c, marketDI.Aggregator, func(sr di.ServiceRegistry) *app.Aggregator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(*logger.Logger)
		symbols := sr.Get("symbols").(*symbol.Table)
		gateways := marketDI.GetGateways(sr)

		aggregator, err := app.NewAggregator(gateways.Exchanges, symbols, app.AggregatorConfig{
			FetchTimeout: cfg.Trading.FetchTimeout,
		}, log.Slog())
		if err != nil {
			panic("failed to create aggregator: " + err.Error())
		}
		return aggregator
	})

	return nil
}

// Startup connects the streaming feeds. Feed connection failures are logged
// and retried by the connection layer; the REST gateways keep serving quotes
// in the meantime.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	gateways := marketDI.GetGateways(mono.Services())

	for _, feed := range gateways.Feeds {
		feed := feed
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := feed.Start(connectCtx)
		cancel()
		if err != nil {
			log.Warn(ctx, "ticker feed connection failed, quotes fall back to polling",
				"exchange", feed.ExchangeID(), "error", err)
		}
	}

	log.Info(ctx, "market module started", "exchanges", len(gateways.Exchanges))
	return nil
}
