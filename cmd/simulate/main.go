// Command simulate writes bursts of operation log entries for one user and
// optionally runs an evaluation, to check monitoring policies by hand.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/equipstore/backend/internal/config"
	"github.com/equipstore/backend/internal/database"
	"github.com/equipstore/backend/internal/logger"
	"github.com/equipstore/backend/internal/models"
	"github.com/equipstore/backend/internal/services"
)

func main() {
	var (
		userEmail = flag.String("user", "test@example.com", "email of the acting user")
		batches   = flag.Int("batches", 3, "number of bursts")
		ops       = flag.Int("ops", 20, "operations per burst")
		delay     = flag.Duration("delay", time.Second, "pause between bursts")
		evaluate  = flag.Bool("evaluate", true, "run one evaluation afterwards")
	)
	flag.Parse()

	cfg, err := config.Load(os.Getenv("STORE_CONFIG_FILE"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger.Init(cfg.Logging.Debug, os.Stdout)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	var user models.User
	if err := db.Where("email = ?", *userEmail).First(&user).Error; err != nil {
		log.Fatalf("user %s not found (run cmd/seed first): %v", *userEmail, err)
	}

	ctx := context.Background()
	oplog := services.NewOperationLogService(db, cfg.Monitoring.LogWriteTimeout)
	actions := []models.OperationAction{models.ActionCreate, models.ActionRead, models.ActionUpdate, models.ActionDelete}

	for b := 0; b < *batches; b++ {
		for i := 0; i < *ops; i++ {
			entityID := fmt.Sprintf("simulated-%d-%d", b, i)
			oplog.LogOperation(ctx, user.ID, actions[i%len(actions)], "item", &entityID, map[string]int{"batch": b, "op": i})
		}
		fmt.Printf("batch %d/%d: %d operations logged\n", b+1, *batches, *ops)
		if b < *batches-1 {
			time.Sleep(*delay)
		}
	}

	if !*evaluate {
		return
	}

	registry := services.NewMonitoredUserRegistry(db)
	evaluator, err := services.NewSuspicionEvaluator(db, registry, services.EvaluatorConfig{
		Window:       cfg.Monitoring.Window,
		Threshold:    cfg.Monitoring.Threshold,
		Reason:       cfg.Monitoring.Reason,
		QueryTimeout: cfg.Monitoring.QueryTimeout,
	})
	if err != nil {
		log.Fatalf("evaluator: %v", err)
	}
	res, err := evaluator.Evaluate(ctx)
	if err != nil {
		log.Fatalf("evaluate: %v", err)
	}

	fmt.Printf("policy %s: window %s, threshold %d\n", cfg.Monitoring.Policy, cfg.Monitoring.Window, cfg.Monitoring.Threshold)
	for _, s := range res.Suspects {
		fmt.Printf("  suspect %s: %d operations, last at %s\n", s.UserID, s.OperationCount, s.LastOperation.Format(time.RFC3339))
	}
	fmt.Printf("%d user(s) newly flagged\n", len(res.Flagged))
}
