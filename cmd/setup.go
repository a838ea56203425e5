package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DachengChen/paiData/ai"
	"github.com/DachengChen/paiData/applog"
	"github.com/DachengChen/paiData/config"
	"github.com/DachengChen/paiData/credential"
	"github.com/DachengChen/paiData/session"
)

// app is what every command that talks to the model needs.
type app struct {
	cfg      *config.Config
	session  session.Config
	protocol ai.Protocol
	resolver *credential.Resolver
}

// loadConfig reads the configuration and starts file logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile, boundFlags(cmd))
	if err != nil {
		return nil, err
	}

	if err := applog.Init(cfg.Log.Path, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
	}
	for _, w := range cfg.Validate() {
		applog.L().Warn("config warning", zap.String("category", "CONFIG"), zap.String("warning", w))
	}
	return cfg, nil
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	protocol, err := ai.NewProtocol(cfg.AI, nil)
	if err != nil {
		return nil, err
	}
	sc, err := session.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		session:  sc,
		protocol: protocol,
		resolver: credential.NewEnvResolver(cfg.AI.ResolvedCredentialEnv()),
	}, nil
}
