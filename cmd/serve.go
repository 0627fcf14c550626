package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcserver "admin-rbac/grpc_server"
	"admin-rbac/registry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(cfgFile *string) *cobra.Command {
	var appName string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and gRPC admin API of one application",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newEnvironment(*cfgFile)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, env, appName)
		},
	}
	serveCmd.Flags().StringVar(&appName, "app", "admin", "Application whose namespace is served")
	return serveCmd
}

func serve(ctx context.Context, env *environment, appName string) error {
	logger := env.logger.Sugar().Named("Serve")

	a, err := newAdminApp(env, appName)
	if err != nil {
		return err
	}

	grpcLis, err := net.Listen("tcp", fmt.Sprintf(":%d", env.cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port %d: %w", env.cfg.GRPCPort, err)
	}
	grpcSrv := grpcserver.NewServer(env.logger, a.tokens, a.app.Name, a.menus, a.roles)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", env.cfg.HTTPPort),
		Handler:           a.container,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 2)
	go func() {
		logger.Infow("gRPC server listening", "port", env.cfg.GRPCPort, "app", a.app.Name)
		errs <- grpcSrv.Serve(grpcLis)
	}()
	go func() {
		logger.Infow("HTTP server listening", "port", env.cfg.HTTPPort, "app", a.app.Name)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	if env.cfg.Consul.Enabled {
		deregister, err := announce(env, a.app.Name)
		if err != nil {
			logger.Warnw("Service registration failed, continuing without it", "error", err)
		} else {
			defer deregister()
		}
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-errs:
		logger.Errorw("Server stopped", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("HTTP shutdown failed", "error", err)
	}
	grpcSrv.GracefulStop()
	return nil
}

// announce registers the HTTP and gRPC listeners of app with Consul and returns the cleanup.
func announce(env *environment, app string) (func(), error) {
	logger := env.logger.Sugar()
	reg, err := registry.NewConsulRegistry(env.cfg.Consul, logger)
	if err != nil {
		return nil, err
	}

	host, err := os.Hostname()
	if err != nil {
		host = "127.0.0.1"
	}
	name := env.cfg.ServiceName
	tags := []string{"app:" + app}

	httpID := registry.InstanceID(name, app, "http", env.cfg.HTTPPort)
	grpcID := registry.InstanceID(name, app, "grpc", env.cfg.GRPCPort)

	httpCheck := registry.CreateHTTPCheck(httpID, host, env.cfg.HTTPPort, "/health", "10s", "1s")
	if err := reg.Register(httpID, name+"-http", host, env.cfg.HTTPPort, tags, httpCheck); err != nil {
		return nil, err
	}
	grpcCheck := registry.CreateGRPCCheck(grpcID, fmt.Sprintf("%s:%d", host, env.cfg.GRPCPort), "10s", "1s", false)
	if err := reg.Register(grpcID, name+"-grpc", host, env.cfg.GRPCPort, tags, grpcCheck); err != nil {
		_ = reg.Deregister(httpID)
		return nil, err
	}

	if peers, err := reg.Healthy(name + "-http"); err == nil {
		logger.Infow("Registered admin instance", "app", app, "healthy_peers", len(peers))
	}

	return func() {
		for _, id := range []string{httpID, grpcID} {
			if err := reg.Deregister(id); err != nil {
				env.logger.Warn("Deregistration failed", zap.String("service_id", id), zap.Error(err))
			}
		}
	}, nil
}
