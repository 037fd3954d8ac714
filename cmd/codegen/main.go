// Command codegen mints a batch of unlock codes against a live database
// and prints them to stdout, one per line. Meant for operators preparing
// campaigns without going through the admin API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"premium-unlock/internal/config"
	"premium-unlock/internal/domain/model"
	pg "premium-unlock/internal/infra/db/postgres"
	"premium-unlock/internal/infra/logging"
	"premium-unlock/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	spec := flag.String("duration", string(model.DurationMonth), "duration spec: trial_30m|day|week|month")
	n := flag.Int("n", 1, "number of codes to mint")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	codeRepo := pg.NewUnlockCodeRepo(pool)
	codeUC := usecase.NewCodeUseCase(codeRepo, pg.NewTxManager(pool), logger)

	codes, err := codeUC.GenerateBatch(ctx, model.DurationSpec(*spec), *n)
	if err != nil {
		log.Fatalf("generate: %v", err)
	}
	for _, c := range codes {
		fmt.Println(c.Code)
	}
}
