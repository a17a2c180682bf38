package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/kevin07696/hotel-payout-service/internal/adapters/lock"
	"github.com/kevin07696/hotel-payout-service/internal/adapters/payos"
	"github.com/kevin07696/hotel-payout-service/internal/adapters/postgres"
	"github.com/kevin07696/hotel-payout-service/internal/adapters/secrets"
	"github.com/kevin07696/hotel-payout-service/internal/adapters/vietqr"
	"github.com/kevin07696/hotel-payout-service/internal/config"
	"github.com/kevin07696/hotel-payout-service/internal/domain/ports"
	cronHandler "github.com/kevin07696/hotel-payout-service/internal/handlers/cron"
	paymentHandler "github.com/kevin07696/hotel-payout-service/internal/handlers/payment"
	payoutHandler "github.com/kevin07696/hotel-payout-service/internal/handlers/payout"
	"github.com/kevin07696/hotel-payout-service/internal/services/commission"
	"github.com/kevin07696/hotel-payout-service/internal/services/contract"
	gatewayService "github.com/kevin07696/hotel-payout-service/internal/services/gateway"
	"github.com/kevin07696/hotel-payout-service/internal/services/ledger"
	payoutService "github.com/kevin07696/hotel-payout-service/internal/services/payout"
	"github.com/kevin07696/hotel-payout-service/internal/services/report"
	"github.com/kevin07696/hotel-payout-service/internal/services/revenue"
	httpclient "github.com/kevin07696/hotel-payout-service/pkg/http"
	"github.com/kevin07696/hotel-payout-service/pkg/logging"
	"github.com/kevin07696/hotel-payout-service/pkg/middleware"
	"github.com/kevin07696/hotel-payout-service/pkg/money"
	"github.com/kevin07696/hotel-payout-service/pkg/observability"
	"github.com/kevin07696/hotel-payout-service/pkg/resilience"
	"github.com/kevin07696/hotel-payout-service/pkg/shutdown"
	"github.com/kevin07696/hotel-payout-service/pkg/timeutil"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hotel-payout-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logger, cfg.IsProduction())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting hotel payout service",
		zap.String("version", version),
		zap.String("environment", cfg.Environment),
	)

	ctx := context.Background()
	stopper := shutdown.NewManager(logger, 30*time.Second)

	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	stopper.RegisterNoErr("database", pool.Close)

	healthChecker := observability.NewHealthChecker(pool)

	locker, redisClient, err := initLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		stopper.Register("redis", func(context.Context) error { return redisClient.Close() })
		healthChecker.AddOptional("redis", redisPinger{redisClient})
	}

	deps, err := initDependencies(ctx, cfg, pool, locker, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	deps.payments.Register(mux)
	deps.payouts.Register(mux)
	deps.cron.Register(mux)

	rateLimiter := middleware.NewRateLimiter(
		cfg.RateLimit.RequestsPerSecond,
		cfg.RateLimit.Burst,
		middleware.WithRejectHook(func(r *http.Request) { observability.RecordRateLimited(r.URL.Path) }),
	)
	stopper.RegisterNoErr("rate-limiter", rateLimiter.Shutdown)

	httpServer := &http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler: middleware.Chain(mux,
			middleware.Recovery(logger),
			middleware.RequestLogger(logger),
			middleware.SecurityHeaders(cfg.IsProduction()),
			rateLimiter.Middleware,
		),
		ReadHeaderTimeout: 10 * time.Second,
		// The cron batch holds the connection open for its whole budget
		WriteTimeout: cfg.Cron.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	grpcListener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	metricsServer := observability.StartMetricsServer(fmt.Sprintf(":%d", cfg.Server.MetricsPort), healthChecker, logger)
	stopper.RegisterHTTPServer("metrics", metricsServer)

	fatal := make(chan error, 2)
	go func() {
		logger.Info("gRPC health server listening", zap.String("address", grpcListener.Addr().String()))
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			fatal <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	stopper.Register("grpc", func(ctx context.Context) error {
		healthServer.Shutdown()
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
			return nil
		case <-ctx.Done():
			grpcServer.Stop()
			return ctx.Err()
		}
	})

	go func() {
		logger.Info("HTTP server listening", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal <- fmt.Errorf("http server: %w", err)
		}
	}()
	stopper.RegisterHTTPServer("http", httpServer)

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	waitCtx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)
	go func() {
		if err := <-fatal; err != nil {
			logger.Error("Server failed", zap.Error(err))
			cancel(err)
		}
	}()

	return stopper.Wait(waitCtx)
}

type dependencies struct {
	payments *paymentHandler.Handler
	payouts  *payoutHandler.Handler
	cron     *cronHandler.PayoutHandler
}

func initDependencies(
	ctx context.Context,
	cfg *config.Config,
	pool *pgxpool.Pool,
	locker ports.Locker,
	logger *zap.Logger,
) (*dependencies, error) {
	serviceLogger := logging.NewZapLogger(logger)
	timeouts := resilience.DefaultTimeoutConfig().WithGateway(cfg.Business.GatewayTimeout)
	timeouts.CronJob = cfg.Cron.Timeout

	locations, err := timeutil.NewLocationCache(cfg.Business.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("load default timezone: %w", err)
	}

	fees, err := money.NewFeeSchedule(cfg.Fees.ProcessingRate, cfg.Fees.PlatformRate)
	if err != nil {
		return nil, fmt.Errorf("fee schedule: %w", err)
	}

	secretStore, err := secrets.NewFromConfig(ctx, cfg.Secrets, logger)
	if err != nil {
		return nil, fmt.Errorf("init secret store: %w", err)
	}

	db := postgres.NewDBExecutor(pool)
	payments := postgres.NewPaymentRepository(db)
	bookings := postgres.NewBookingRepository(db)
	contracts := postgres.NewContractRepository(db)
	bankAccounts := postgres.NewBankAccountRepository(db)
	payouts := postgres.NewPayoutRepository(db)
	revenueRepo := postgres.NewRevenueRepository(db)

	gatewayHTTP := httpclient.NewHTTPClient(httpclient.GatewayClientConfig(), timeouts.Gateway+time.Second)

	var qr ports.QRGenerator
	if cfg.VietQREnabled() {
		qr = vietqr.NewClient(cfg.VietQR, gatewayHTTP, secretStore, timeouts, logger)
		logger.Info("VietQR payments enabled", zap.String("acq_id", cfg.VietQR.AcqID))
	} else {
		logger.Warn("VietQR is not configured; QR payments are disabled")
	}

	var payOS ports.PayOSClient
	if cfg.PayOSEnabled() {
		payOS = payos.NewClient(cfg.PayOS, gatewayHTTP, secretStore, timeouts, logger)
		logger.Info("PayOS payments enabled")
	} else {
		logger.Warn("PayOS is not configured; hosted checkout is disabled")
	}

	ledgerSvc := ledger.NewService(db, payments, bookings, qr, payOS,
		ledger.NewTxRefGenerator(cfg.Business.TxRefPrefix),
		ledger.Config{
			Fees:           fees,
			Currency:       cfg.Business.Currency,
			OrderPrefix:    cfg.Business.TxRefPrefix,
			PaymentLinkTTL: time.Duration(cfg.PayOS.LinkExpiryMinutes) * time.Minute,
		},
		serviceLogger,
	)
	gatewaySvc := gatewayService.NewService(ledgerSvc, payments, payOS, serviceLogger)
	revenueSvc := revenue.NewService(revenueRepo, locations, serviceLogger)
	reportSvc := report.NewService(revenueSvc, serviceLogger)
	payoutSvc := payoutService.NewService(db, payouts, bankAccounts, revenueSvc,
		contract.NewResolver(contracts, serviceLogger),
		commission.NewCalculator(serviceLogger),
		locker,
		serviceLogger,
	).WithBatchLockTTL(cfg.Redis.LockTTL)

	return &dependencies{
		payments: paymentHandler.NewHandler(ledgerSvc, gatewaySvc, timeouts, logger),
		payouts:  payoutHandler.NewHandler(revenueSvc, reportSvc, payoutSvc, timeouts, logger),
		cron:     cronHandler.NewPayoutHandler(payoutSvc, timeouts, locations.Fallback(), cfg.Cron.Secret, logger),
	}, nil
}

// initLocker connects to Redis when configured. Without Redis a single
// replica is assumed and the batch runs unguarded.
func initLocker(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.Locker, *redis.Client, error) {
	if cfg.Redis.Addr == "" {
		logger.Warn("REDIS_ADDR not set; daily payout batches are not guarded across replicas")
		return lock.NoopLocker{}, nil, nil
	}
	client, err := lock.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("init redis: %w", err)
	}
	logger.Info("Redis batch lock enabled", zap.String("addr", cfg.Redis.Addr))
	return lock.NewRedisLocker(client, logger), client, nil
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
