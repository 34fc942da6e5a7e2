package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/taskgate/internal/config"
	"github.com/ppiankov/taskgate/internal/httpapi"
	"github.com/ppiankov/taskgate/internal/server"
)

var (
	serveAddr     string
	serveGRPCPort int
	serveNoReload bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (overrides http.addr)")
	serveCmd.Flags().IntVar(&serveGRPCPort, "grpc-port", 0, "gRPC listen port, 0 to use grpc.port (disabled when both are 0)")
	serveCmd.Flags().BoolVar(&serveNoReload, "no-reload", false, "Disable config and denylist hot-reload")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP task server",
	Long: "Serves POST /run, GET /read, and GET /healthz over HTTP, and the\n" +
		"TaskService over gRPC when a port is configured.\n" +
		"Supports hot-reload of the config and denylist files.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	httpCfg := a.cfg.HTTP
	if serveAddr != "" {
		httpCfg.Addr = serveAddr
	}
	grpcPort := a.cfg.GRPC.Port
	if serveGRPCPort != 0 {
		grpcPort = serveGRPCPort
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !serveNoReload {
		startReloader(ctx, a)
	}

	var grpcSrv *server.Server
	if grpcPort > 0 {
		grpcSrv = server.New(server.Config{Port: grpcPort}, a.d, a.reader, a.log.Logger)
		go func() {
			if err := grpcSrv.Serve(); err != nil {
				a.log.Error("gRPC server stopped", "error", err)
				cancel()
			}
		}()
		fmt.Fprintf(os.Stderr, "taskgate gRPC server listening on :%d\n", grpcPort)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nShutting down task server...")
		case <-ctx.Done():
		}
		cancel()
		if grpcSrv != nil {
			grpcSrv.GracefulStop()
		}
	}()

	fmt.Fprintf(os.Stderr, "taskgate HTTP server listening on %s\n", httpCfg.Addr)
	fmt.Fprintf(os.Stderr, "Data root: %s\n", a.cfg.Root())
	fmt.Fprintf(os.Stderr, "Operations: %v\n", a.ops.IDs())
	fmt.Fprintf(os.Stderr, "Config: %s\n", a.cfgHash)
	fmt.Fprintln(os.Stderr)

	return httpapi.New(httpCfg, a.d, a.reader, a.log.Logger).Start(ctx)
}

// startReloader watches the config file and the denylist it names.
func startReloader(ctx context.Context, a *app) {
	path := a.cfgPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return
		}
		path = p
	}

	cr := server.NewConfigReloader(path, a.d, a.log.Logger).WithRunner(a.runner)
	reloader, err := server.NewReloader(cr.Reload, []string{path, a.cfg.Guard.DenylistPath}, a.log.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: hot-reload disabled: %v\n", err)
		return
	}
	if len(reloader.Paths()) > 0 {
		fmt.Fprintf(os.Stderr, "Hot-reload enabled for %v\n", reloader.Paths())
	}
	go func() { _ = reloader.Run(ctx) }()
}
