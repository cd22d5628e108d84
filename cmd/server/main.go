package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/dineflow/table-reservation/internal/config"
	"github.com/dineflow/table-reservation/internal/database"
	"github.com/dineflow/table-reservation/internal/engine"
	"github.com/dineflow/table-reservation/internal/model"
	"github.com/dineflow/table-reservation/internal/queue"
	"github.com/dineflow/table-reservation/internal/repository"
	"github.com/dineflow/table-reservation/internal/router"
	"github.com/dineflow/table-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()
	if cfg.Env == "dev" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.DebugLevel)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		log.WithError(err).Fatal("schema migration failed")
	}

	inventory, err := loadInventory(ctx, db)
	if err != nil {
		log.WithError(err).Fatal("loading table inventory failed")
	}
	log.WithField("tables", len(inventory)).Info("floor plan loaded")

	store := repository.NewStore(db)
	events := service.NewEventPublisher(queue.BrokerURL(), log)
	eng := engine.New(inventory, engine.SystemClock(), store, events, log)

	if err := restoreState(ctx, store, eng, eng.Now()); err != nil {
		log.WithError(err).Fatal("restoring persisted state failed")
	}

	go queue.StartNotificationConsumer(log)

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go eng.RunRecomputeLoop(loopCtx, cfg.RecomputeInterval)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting and caching disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	router.RegisterRoutes(e, router.Deps{
		Engine:    eng,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
	})

	addr := ":" + cfg.Port
	log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// loadInventory seeds the default floor plan on first start and returns
// the persisted inventory. Running restaurants may have edited the
// dining_tables rows directly, so the database copy wins over the
// built-in defaults.
func loadInventory(ctx context.Context, db *sql.DB) ([]model.Table, error) {
	repo := repository.NewTableRepo(db)

	seed := make([]repository.TableRecord, 0, len(model.DefaultTables))
	for _, t := range model.DefaultTables {
		seed = append(seed, repository.TableRecord{
			ID:       t.ID,
			Name:     t.Name,
			Location: t.Location,
			Segment:  t.Segment,
			Capacity: t.Capacity,
		})
	}
	if err := repo.SeedIfEmpty(ctx, seed); err != nil {
		return nil, err
	}

	records, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	tables := make([]model.Table, 0, len(records))
	for _, rec := range records {
		tables = append(tables, model.Table{
			ID:       rec.ID,
			Name:     rec.Name,
			Location: rec.Location,
			Segment:  rec.Segment,
			Capacity: rec.Capacity,
		})
	}
	return tables, nil
}

// restoreState reloads reservations and queue entries from today onward
// so a restart does not drop bookings or anyone's place in line.
func restoreState(ctx context.Context, store *repository.Store, eng *engine.Engine, now time.Time) error {
	today := now.Format("2006-01-02")

	reservations, err := store.Reservations.ListFromDate(ctx, today)
	if err != nil {
		return err
	}
	for _, res := range reservations {
		eng.RestoreReservation(res)
	}

	walkIns, err := store.WalkIn.ListFromDate(ctx, today)
	if err != nil {
		return err
	}
	for _, entry := range walkIns {
		eng.RestoreWalkInEntry(entry)
	}

	slotEntries, err := store.SlotQueue.ListFromDate(ctx, today)
	if err != nil {
		return err
	}
	for _, entry := range slotEntries {
		eng.RestoreSlotQueueEntry(entry)
	}
	return nil
}
