// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/fd1az/crossarb/business/arbitrage/app"
	"github.com/fd1az/crossarb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Scheduler = di.NewToken[*app.Scheduler]("arbitrage.Scheduler")
)

// Private dependency tokens - internal to arbitrage module
var (
	Scanner  = di.NewToken[*app.Scanner]("arbitrage:scanner")
	Executor = di.NewToken[*app.Executor]("arbitrage:executor")
	Reporter = di.NewToken[app.Reporter]("arbitrage:reporter")
)

// Helper functions for type-safe access
func GetScheduler(c di.ServiceRegistry) *app.Scheduler {
	return di.GetToken(c, Scheduler)
}

func GetScanner(c di.ServiceRegistry) *app.Scanner {
	return di.GetToken(c, Scanner)
}

func GetExecutor(c di.ServiceRegistry) *app.Executor {
	return di.GetToken(c, Executor)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}
