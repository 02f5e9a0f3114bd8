package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inkwellhq/inkwell/internal/server"
	"github.com/inkwellhq/inkwell/internal/service"
	"github.com/inkwellhq/inkwell/internal/store"
)

const banner = `
 ___       _                   _ _
|_ _|_ __ | | ____      __ ___| | |
 | || '_ \| |/ /\ \ /\ / // _ \ | |
 | || | | |   <  \ V  V /|  __/ | |
|___|_| |_|_|\_\  \_/\_/  \___|_|_|
`

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Inkwell API server",
		Long:  "Start the HTTP server that exposes the admin and public content APIs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(host, port, dev)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging, CORS *, insecure cookies)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(host string, port int, dev bool) error {
	fmt.Print(banner)
	fmt.Println()

	logLevel := slog.LevelInfo
	if dev {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer st.Close()
	logger.Info("store initialized", "path", resolveDataDir())

	jwtSecret := viper.GetString("auth.jwt_secret")
	if jwtSecret == "" {
		if !dev {
			return fmt.Errorf("auth.jwt_secret is not set; configure it in inkwell.yaml or INKWELL_AUTH_JWT_SECRET")
		}
		jwtSecret = "inkwell-dev-secret-change-me"
		logger.Warn("using built-in development JWT secret")
	}
	authSvc := service.NewAuthService(st, jwtSecret)

	hasAdmin, err := st.HasAnyAdmin(cmdCtx())
	if err != nil {
		logger.Warn("failed to check for admin", "error", err)
	}
	if !hasAdmin {
		logger.Warn("no admin account found - register via /api/auth/register or run: inkwell admin create")
	}

	corsOrigins := viper.GetStringSlice("server.cors_origins")
	if len(corsOrigins) == 0 || dev {
		corsOrigins = []string{"*"}
	}

	srvCfg := server.Config{
		Host:            host,
		Port:            port,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     corsOrigins,
		SecureCookies:   !dev,
		LoginRateLimit:  20,
	}

	srv := server.New(srvCfg, st, authSvc, logger)

	fmt.Printf("→ Listening on http://%s:%d\n", host, port)
	fmt.Printf("→ Admin API:  http://%s:%d/api\n", host, port)
	fmt.Printf("→ Public API: http://%s:%d/api/public\n", host, port)
	fmt.Printf("→ Health:     http://%s:%d/health\n", host, port)
	fmt.Println()

	return srv.ListenAndServe()
}

func openStore() (*store.Store, error) {
	return store.New(resolveDataDir())
}

func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if dir := viper.GetString("data_dir"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return home + "/.inkwell"
}
