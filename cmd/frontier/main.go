package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/frontierdb/frontier/frontend"
	"github.com/frontierdb/frontier/pkg"
	"github.com/frontierdb/frontier/pkg/config"
	"github.com/frontierdb/frontier/pkg/conn"
	"github.com/frontierdb/frontier/pkg/flog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:     "frontier",
	Short:   "frontier",
	Long:    "frontier: query compilation front end for distributed execution backends",
	Version: pkg.FrontierVersionRevision,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run the frontend",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgPath != "" {
			if err := config.LoadFrontendCfg(cfgPath); err != nil {
				return err
			}
		}
		cfg := config.FrontendConfig()
		if err := flog.UpdateZeroLogLevel(cfg.LogLevel); err != nil {
			return err
		}

		version := readMetaFile(cfg.VersionFile, "commit version file not found")
		branch := readMetaFile(cfg.BranchFile, "branch file not found")

		cluster := conn.NewClusterConn(&cfg.Cluster)
		codegen := conn.NewCodegenConn(&cfg.Codegen)
		app := frontend.NewApp(cluster, codegen, version, branch)

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			flog.Zero.Info().Str("addr", cfg.HTTPAddr).Msg("serving http")
			return app.Serve(gctx, cfg.HTTPAddr)
		})
		g.Go(func() error {
			// cosmetic but useful in logs at startup
			flog.Zero.Info().Str("cluster", cluster.ConnectionString()).Msg("backend probe")
			return nil
		})
		return g.Wait()
	},
}

// readMetaFile reads a one-line metadata file, degrading to the
// placeholder when unreadable.
func readMetaFile(path, placeholder string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return placeholder
	}
	return strings.TrimSpace(string(data))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		flog.Zero.Fatal().Err(err).Msg("frontier failed")
	}
}
