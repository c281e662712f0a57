// Package campaign is the command wiring for the campaign server.
package campaign

import (
	"context"
	"flag"

	platformcmd "github.com/impulso-music/impulso/internal/platform/cmd"
	server "github.com/impulso-music/impulso/internal/services/campaign/app"
)

// Config holds campaign command configuration. Environment variables provide
// defaults; flags override them.
type Config struct {
	Addr         string `env:"IMPULSO_CAMPAIGN_ADDR" envDefault:":8080"`
	DBPath       string `env:"IMPULSO_CAMPAIGN_DB" envDefault:"campaign.db"`
	BackendURL   string `env:"IMPULSO_BACKEND_URL"`
	BackendToken string `env:"IMPULSO_BACKEND_TOKEN"`
	JWTSecret    string `env:"IMPULSO_JWT_SECRET"`
}

// ParseConfig loads environment defaults and parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The campaign HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The campaign SQLite database path")
	fs.StringVar(&cfg.BackendURL, "backend-url", cfg.BackendURL, "The marketplace backend base URL")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the campaign server with telemetry configured.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceCampaign, func(ctx context.Context) error {
		return server.Run(ctx, server.Config{
			Addr:         cfg.Addr,
			DBPath:       cfg.DBPath,
			BackendURL:   cfg.BackendURL,
			BackendToken: cfg.BackendToken,
			JWTSecret:    []byte(cfg.JWTSecret),
		})
	})
}
