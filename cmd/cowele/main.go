package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/haroldove90-spec/Cowele/internal/app"
	"github.com/haroldove90-spec/Cowele/internal/config"
	"github.com/haroldove90-spec/Cowele/internal/geo"
	"github.com/haroldove90-spec/Cowele/internal/geolocation"
	"github.com/haroldove90-spec/Cowele/internal/mapfocus"
	"github.com/haroldove90-spec/Cowele/internal/metrics"
	"github.com/haroldove90-spec/Cowele/internal/session"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	"github.com/haroldove90-spec/Cowele/internal/storage/cloudinary"
	"github.com/haroldove90-spec/Cowele/internal/storage/file"
	"github.com/haroldove90-spec/Cowele/internal/storage/memory"
	"github.com/haroldove90-spec/Cowele/internal/storage/minio"
	"github.com/haroldove90-spec/Cowele/internal/storage/mongo"
	"github.com/haroldove90-spec/Cowele/internal/storage/postgres"
	"github.com/haroldove90-spec/Cowele/internal/storage/redis"
	cowelehttp "github.com/haroldove90-spec/Cowele/internal/transport/http"
	"github.com/haroldove90-spec/Cowele/internal/transport/http/handlers"
	"github.com/haroldove90-spec/Cowele/pkg/interceptors"
	"google.golang.org/grpc"
	health "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting cowele", "env", cfg.Env)

	geo.SetCityCenter(geo.Point{Lat: cfg.City.Lat, Lng: cfg.City.Lng})

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	clock := clockwork.NewRealClock()

	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	store, err := openStore(dbCtx, cfg.Store, clock)
	dbCancel()
	if err != nil {
		log.Error("store_connect_failed", slog.String("driver", cfg.Store.Driver), slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}
	log.Info("store_connected", slog.String("driver", cfg.Store.Driver))

	objCtx, objCancel := context.WithTimeout(rootCtx, 10*time.Second)
	objects, err := openObjects(objCtx, cfg.Objects)
	objCancel()
	if err != nil {
		log.Error("objects_connect_failed", slog.String("driver", cfg.Objects.Driver), slog.String("err", err.Error()))
		rootCancel()
		store.Close()
		os.Exit(1)
	}
	log.Info("objects_connected", slog.String("driver", cfg.Objects.Driver))

	kvCtx, kvCancel := context.WithTimeout(rootCtx, 10*time.Second)
	kv, kvClose, err := openKV(kvCtx, cfg.Local)
	kvCancel()
	if err != nil {
		log.Error("local_storage_open_failed", slog.String("driver", cfg.Local.Driver), slog.String("err", err.Error()))
		rootCancel()
		store.Close()
		os.Exit(1)
	}
	log.Info("local_storage_opened", slog.String("driver", cfg.Local.Driver))

	m := metrics.New(prometheus.DefaultRegisterer)

	a := app.New(app.Deps{
		Store:   store,
		Objects: objects,
		KV:      kv,
		Roster:  session.NewRoster(cfg.Admins),
		Clock:   clock,
		Metrics: m,
		Timings: mapfocus.Timings{
			FitDelay:           cfg.Map.FitDelay,
			InvalidateInterval: cfg.Map.InvalidateInterval,
			PickerSettle:       cfg.Map.PickerSettle,
		},
		Branding: app.Branding{
			Name:   cfg.Branding.Name,
			Logo:   cfg.Branding.Logo,
			Icon:   cfg.Branding.Icon,
			Splash: cfg.Branding.Splash,
		},
		DefaultPhoto:  cfg.Defaults.Photo,
		DefaultAvatar: cfg.Defaults.Avatar,
	})

	var locator geolocation.Provider = geolocation.NewReported()
	if cfg.Geolocation.Fixed {
		locator = geolocation.Static{Point: geo.Point{Lat: cfg.Geolocation.Lat, Lng: cfg.Geolocation.Lng}}
	}

	a.Start(rootCtx, locator, cfg.Geolocation.Timeout)
	log.Info("app_started")

	apiHandler := cowelehttp.NewRouter(handlers.New(a, m, cfg.HTTP.CORSOrigins), cowelehttp.Options{
		Logger:      log,
		Metrics:     m,
		Timeouts:    cfg.Timeouts,
		BasePath:    "/api",
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	var ready int32 // 0: not ready; 1: ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/api/", apiHandler)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("http_listen_start", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}()

	grpc_prometheus.EnableHandlingTimeHistogram()

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.Unary(interceptors.Options{Logger: log, Timeout: cfg.Timeouts.Service}),
			grpc_prometheus.UnaryServerInterceptor,
		),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	grpc_prometheus.Register(grpcServer)

	if cfg.Env == envLocal || cfg.Env == envDev {
		reflection.Register(grpcServer)
	}

	grpcAddr := cfg.GRPC.Addr()
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Error("grpc_listen_failed",
			slog.String("addr", grpcAddr),
			slog.String("err", err.Error()),
		)
		rootCancel()
		store.Close()
		kvClose()
		os.Exit(1)
	}
	log.Info("grpc_listen_start", slog.String("addr", grpcAddr))

	setHealth(hs, healthpb.HealthCheckResponse_SERVING)
	atomic.StoreInt32(&ready, 1)

	serveErrCh := make(chan error, 1)
	go func() {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("grpc_serve_failed", slog.String("err", err.Error()))
		}
	}

	setHealth(hs, healthpb.HealthCheckResponse_NOT_SERVING)
	atomic.StoreInt32(&ready, 0)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	done := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("grpc_stopped")
	case <-shutdownCtx.Done():
		log.Warn("grpc_force_stop")
		grpcServer.Stop()
	}

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}
	shutdownCancel()

	rootCancel()
	store.Close()
	kvClose()

	log.Info("service_stopped")
	os.Exit(0)
}

// healthComponents: service в HealthCheckRequest; пустое имя означает процесс целиком.
var healthComponents = []string{"", "cowele.store", "cowele.objects", "cowele.local"}

func setHealth(hs *health.Server, st healthpb.HealthCheckResponse_ServingStatus) {
	for _, c := range healthComponents {
		hs.SetServingStatus(c, st)
	}
}

// openStore подключает удалённое хранилище таблиц по cfg.Driver.
func openStore(ctx context.Context, cfg config.StoreConfig, clock clockwork.Clock) (storage.Store, error) {
	switch cfg.Driver {
	case config.StorePostgres:
		return postgres.New(ctx, cfg.URL)
	case config.StoreMongo:
		return mongo.New(ctx, cfg.URL)
	case config.StoreMemory:
		return memory.New(clock), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// openObjects подключает объектное хранилище по cfg.Driver.
func openObjects(ctx context.Context, cfg config.ObjectsConfig) (storage.Objects, error) {
	switch cfg.Driver {
	case config.ObjectsMinio:
		return minio.New(ctx, cfg)
	case config.ObjectsCloudinary:
		return cloudinary.New(cfg)
	case config.ObjectsMemory:
		return memory.NewObjects(cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown objects driver %q", cfg.Driver)
	}
}

// openKV открывает долговременное хранилище сессии. Второе значение закрывает соединение.
func openKV(ctx context.Context, cfg config.LocalConfig) (storage.KV, func(), error) {
	switch cfg.Driver {
	case config.LocalRedis:
		kv, err := redis.New(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}

		return kv, func() {
			if err := kv.Close(); err != nil {
				slog.Warn("redis_close_failed", slog.String("err", err.Error()))
			}
		}, nil
	case config.LocalFile:
		kv, err := file.New(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}

		return kv, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown local driver %q", cfg.Driver)
	}
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
