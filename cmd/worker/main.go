package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jhoicas/Inventario-minero/internal/application/documents"
	"github.com/jhoicas/Inventario-minero/internal/domain/workflow"
	"github.com/jhoicas/Inventario-minero/internal/infrastructure/jobs"
	"github.com/jhoicas/Inventario-minero/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-minero/pkg/config"
	"github.com/jhoicas/Inventario-minero/pkg/logger"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if cfg.Redis.Addr == "" {
		log.Fatal().Msg("REDIS_ADDR es requerido para el worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	reconciler := documents.NewReconciler(postgres.NewStore(pool), workflow.Policy{
		EppWarningDays:  cfg.Inventory.EppWarningDays,
		LoanDueSoonDays: cfg.Inventory.LoanDueSoonDays,
	}, log, nil)

	task, err := jobs.NewReconcileTask(time.Now().UTC())
	if err != nil {
		log.Fatal().Err(err).Msg("construir tarea de conciliación")
	}
	redisOpts := asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts,
		Concurrency: cfg.Jobs.Concurrency,
		Log:         log,
		Handlers: map[string]asynq.Handler{
			jobs.TaskReconcileStatus: jobs.NewReconcileHandler(reconciler, log),
		},
		Cron: []jobs.CronRegistration{{Spec: cfg.Jobs.ReconcileCron, Task: task}},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar worker")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		// Conciliación inicial para no esperar al primer disparo del cron.
		client := jobs.NewClient(redisOpts)
		defer func() { _ = client.Close() }()
		_, err := client.EnqueueReconcile(gctx, time.Now().UTC())
		if err != nil {
			log.Warn().Err(err).Msg("no se pudo encolar la conciliación inicial")
		}
		return nil
	})

	log.Info().Str("cron", cfg.Jobs.ReconcileCron).Int("concurrency", cfg.Jobs.Concurrency).Msg("worker iniciado")
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("worker finalizado con error")
		os.Exit(1)
	}
	log.Info().Msg("worker detenido")
}
