package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/getsentry/sentry-go"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/relaymaps/relaygeo/utils"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "relaygeo",
	Short: "relaygeo resolves Nostr relay endpoints to geographic coordinates",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = utils.Version
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/relaygeo.yml)")
	rootCmd.PersistentFlags().String("level", "info", "log level")
	rootCmd.PersistentFlags().String("log-format", "json", "log format: json or text")
	rootCmd.PersistentFlags().String("db", "dbip-city-ipv4-num.csv", "path to the range dataset CSV")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("db.path", rootCmd.PersistentFlags().Lookup("db"))

	viper.SetDefault("db.url", "https://raw.githubusercontent.com/sapics/ip-location-db/refs/heads/main/dbip-city/dbip-city-ipv4-num.csv.gz")
	viper.SetDefault("resolver.timeout", "10s")
	viper.SetDefault("resolver.concurrency", 128)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.size", 128)
	viper.SetDefault("locators.mmdb.path", "")
	viper.SetDefault("locators.ipstack.enabled", false)
	viper.SetDefault("locators.ipstack.apikey", "")
}

func configureLogging(_ context.Context) {
	level, err := zerolog.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		fmt.Println("invalid log level")
		os.Exit(1)
	}

	if viper.GetString("log.format") == "text" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	zerolog.SetGlobalLevel(level)
	if level == zerolog.TraceLevel {
		log.Logger = log.With().Caller().Logger()
	}

	log.Logger.Level(level)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Printf("home directory not found %s\n", err.Error())
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/app")
		viper.SetConfigName("relaygeo")
	}

	replacer := strings.NewReplacer("-", "_", ".", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.SetEnvPrefix("RELAYGEO")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	ctx := context.Background()
	configureLogging(ctx)

	// initialize sentry if a DSN is configured via sentry.dsn in the config
	// file or the RELAYGEO_SENTRY_DSN environment variable
	if dsn := viper.GetString("sentry.dsn"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			log.Warn().Err(err).Msg("failed to initialize Sentry")
		} else {
			log.Info().Msg("Sentry error tracking enabled")
		}
	}

	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Info().Str("file", e.Name).Msg("reloading config")
		configureLogging(context.Background())
	})
}
