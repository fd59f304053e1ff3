package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piwi3910/PanelCut/internal/config"
	"github.com/piwi3910/PanelCut/internal/server"
	"github.com/piwi3910/PanelCut/internal/share"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the optimizer and share links over HTTP",
		Example: `  panelcut serve --addr :8080
  panelcut serve --share-backend s3 --bucket my-cut-plans`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.loadCatalog()
			if err != nil {
				return err
			}
			store, err := a.shareStore(cmd)
			if err != nil {
				return err
			}

			srv := server.New(cat, store,
				server.WithSettings(a.cfg.Settings),
				server.WithBaseURL(a.cfg.Server.BaseURL),
				server.WithLogger(a.logger),
				server.WithVersion(Version),
			)
			return srv.ListenAndServe(cmd.Context(), a.cfg.Server.Addr)
		},
	}

	fs := cmd.Flags()
	fs.String("addr", ":8080", "Listen address")
	fs.String("base-url", "http://localhost:8080", "Public URL share links point at")
	fs.String("share-backend", config.BackendMemory, "Share link storage: memory or s3")
	fs.Duration("share-ttl", share.DefaultTTL, "How long share links stay valid")
	fs.String("bucket", "", "S3 bucket for the s3 share backend")
	fs.String("prefix", "shared/", "S3 key prefix for shared plans")
	fs.Float64("kerf", 0, "Default blade kerf in mm for requests without settings")
	return cmd
}

func (a *app) shareStore(cmd *cobra.Command) (share.Store, error) {
	sc := a.cfg.Share
	switch sc.Backend {
	case config.BackendS3:
		store, err := share.NewS3StoreFromEnv(cmd.Context(), sc.Bucket, sc.Prefix, share.WithTTL(sc.TTL))
		if err != nil {
			return nil, fmt.Errorf("failed to configure s3 share store: %w", err)
		}
		a.logger.Info("share links stored in s3", "bucket", sc.Bucket, "prefix", sc.Prefix)
		return store, nil
	default:
		return share.NewMemoryStore(share.WithTTL(sc.TTL)), nil
	}
}
