package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resumatch/internal/config"
	logpkg "github.com/kailas-cloud/resumatch/internal/logger"
)

const appName = "resumatch"

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	env        string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "resumatch scores how well a resume matches a job description",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default is config/<env>.yaml)")
	cmd.PersistentFlags().StringVar(&opts.env, "env", "", "environment name: local, dev, prod (default is $ENV or local)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the config")

	cmd.AddCommand(
		newServeCmd(opts),
		newAnalyzeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// load reads the dotenv file, the YAML config and builds the logger.
func (o *rootOptions) load() (config.Config, *zap.Logger, string, error) {
	// A missing dotenv file is normal outside local development.
	if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config.Config{}, nil, "", fmt.Errorf("load %s: %w", o.envFile, err)
	}

	env := o.env
	if env == "" {
		env = config.GetEnv()
	}

	var (
		cfg config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadFile(o.configFile)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return config.Config{}, nil, "", fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, "", fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, env, nil
}
