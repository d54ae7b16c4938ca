// cmd/notifier/main.go is an asynchronous worker that pops resolved steal
// actions from a Redis queue and persists notification rows to PostgreSQL.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/jackc/pgx/v5"
	"github.com/launchcast/stealgame/internal/cache"
	"github.com/launchcast/stealgame/internal/config"
	"github.com/launchcast/stealgame/internal/database"
	"github.com/launchcast/stealgame/internal/models"
	"github.com/redis/go-redis/v9"
)

// NotifierService encapsulates the Redis + DB logic for turning steal
// action events into per-user notification rows.
type NotifierService struct {
	queue      *cache.Queue
	store      *database.Store
	batchSize  int
	flushDelay time.Duration

	batchMu  sync.Mutex
	batch    []models.ActionRecord
	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewNotifierService constructs a NotifierService from environment variables or defaults.
func NewNotifierService(cfg *config.Config) (*NotifierService, error) {
	batchSize := getEnvInt("NOTIFIER_BATCH_SIZE", 20)
	flushMs := getEnvInt("NOTIFIER_FLUSH_MS", 500)

	queue, err := cache.Connect(cfg.RedisAddr, cfg.RedisDB, os.Getenv("NOTIFIER_QUEUE_NAME"))
	if err != nil {
		return nil, err
	}
	store, err := database.Connect(context.Background(), cfg.PostgresURL())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &NotifierService{
		queue:      queue,
		store:      store,
		batchSize:  batchSize,
		flushDelay: time.Duration(flushMs) * time.Millisecond,
		batch:      make([]models.ActionRecord, 0, batchSize),
		ctx:        ctx,
		cancelFn:   cancel,
	}, nil
}

// Run starts the queue-reading loop and blocks until Stop.
func (ns *NotifierService) Run() {
	go ns.readRedisLoop()

	log.Println("steal-notifier service started.")
	<-ns.ctx.Done()
	ns.flushBatchToDB()
	log.Println("steal-notifier shutting down.")
}

// readRedisLoop continuously uses BLPop to retrieve events from the Redis queue.
func (ns *NotifierService) readRedisLoop() {
	ticker := time.NewTicker(ns.flushDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ns.ctx.Done():
			return

		case <-ticker.C:
			ns.flushBatchToDB()

		default:
			// BLPop with a short timeout so context cancellation is handled.
			res, err := ns.queue.Client().BLPop(ns.ctx, 3*time.Second, ns.queue.Name()).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				if ns.ctx.Err() != nil {
					return
				}
				log.Printf("[ERROR] BLPop: %v\n", err)
				continue
			}
			if len(res) < 2 {
				continue
			}

			var rec models.ActionRecord
			if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
				log.Printf("invalid action record: %v\n", err)
				continue
			}
			ns.appendToBatch(rec)
		}
	}
}

func (ns *NotifierService) appendToBatch(rec models.ActionRecord) {
	ns.batchMu.Lock()
	defer ns.batchMu.Unlock()

	ns.batch = append(ns.batch, rec)
	if len(ns.batch) >= ns.batchSize {
		ns.flushLocked()
	}
}

func (ns *NotifierService) flushBatchToDB() {
	ns.batchMu.Lock()
	defer ns.batchMu.Unlock()
	ns.flushLocked()
}

// flushLocked writes the batch in one transaction. Caller holds batchMu.
func (ns *NotifierService) flushLocked() {
	if len(ns.batch) == 0 {
		return
	}
	batchCopy := make([]models.ActionRecord, len(ns.batch))
	copy(batchCopy, ns.batch)
	ns.batch = ns.batch[:0]

	ctx := context.Background()
	err := ns.store.WithTx(ctx, func(tx pgx.Tx) error {
		for _, rec := range batchCopy {
			if err := insertNotificationsTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insertNotificationsTx: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[ERROR] flush: %v\n", err)
	} else {
		log.Printf("Flushed %d actions to DB.\n", len(batchCopy))
	}
}

// notificationKinds maps an action outcome to the kind labels stored
// for each side of the steal.
func notificationKinds(successful bool) (attackerKind, targetKind string) {
	if successful {
		return "steal_won", "stolen_from"
	}
	return "steal_lost", "steal_defended"
}

// insertNotificationsTx writes one row for the attacker and one for the
// target per resolved action.
func insertNotificationsTx(ctx context.Context, tx pgx.Tx, rec models.ActionRecord) error {
	q := `
		INSERT INTO sg_notifications (user_id, kind, action_id, amount)
		VALUES ($1, $2, $3, $4)
	`
	attackerKind, targetKind := notificationKinds(rec.Successful)
	if _, err := tx.Exec(ctx, q, rec.AttackerID, attackerKind, rec.ID, rec.Amount); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, q, rec.TargetID, targetKind, rec.ID, rec.Amount)
	return err
}

// Stop gracefully stops the notifier service.
func (ns *NotifierService) Stop() {
	ns.cancelFn()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ns, err := NewNotifierService(cfg)
	if err != nil {
		log.Fatalf("notifier init error: %v", err)
	}
	go ns.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	ns.Stop()
	log.Println("Notifier shutdown complete.")
}

// getEnvInt retrieves an integer value from an environment variable or returns a default value.
func getEnvInt(key string, defVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defVal
	}
	return i
}
