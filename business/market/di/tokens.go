// Package di contains dependency injection tokens for the market context.
package di

import (
	"github.com/fd1az/crossarb/business/market/app"
	"github.com/fd1az/crossarb/business/market/infra/stream"
	"github.com/fd1az/crossarb/internal/di"
)

// Gateways bundles the exchange connectors with their streaming feeds so both
// are built in a single factory pass.
type Gateways struct {
	Exchanges []app.Exchange
	Feeds     []*stream.Feed
}

// Public service tokens - exposed to other modules
var (
	Aggregator = di.NewToken[*app.Aggregator]("market.Aggregator")
)

// Private dependency tokens - internal to market module
var (
	ExchangeGateways = di.NewToken[*Gateways]("market:gateways")
)

// Helper functions for type-safe access
func GetAggregator(c di.ServiceRegistry) *app.Aggregator {
	return di.GetToken(c, Aggregator)
}

func GetGateways(c di.ServiceRegistry) *Gateways {
	return di.GetToken(c, ExchangeGateways)
}
