// Command bcrypt-bench finds the bcrypt cost to configure as AUTH_BCRYPT_COST on
// the current host.
package main

import (
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/auth"
)

func main() {
	target := flag.Duration("target", 241*time.Millisecond, "minimum time a single hash should take")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	measure := func(cost int) (time.Duration, error) {
		elapsed, err := auth.MeasureCost(cost)
		if err == nil {
			logger.Info("measured", zap.Int("cost", cost), zap.Duration("elapsed", elapsed))
		}
		return elapsed, err
	}

	cost, err := auth.CalibrateCost(*target, measure)
	if err != nil {
		logger.Fatal("calibration failed", zap.Error(err))
	}
	logger.Info("recommended cost", zap.Int("AUTH_BCRYPT_COST", cost), zap.Duration("target", *target))
}
