package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/helpgpt/internal/profile"
	"github.com/hrygo/helpgpt/server"
	"github.com/hrygo/helpgpt/store"
	"github.com/hrygo/helpgpt/store/db"
)

const version = "0.1.0"

var (
	rootCmd = &cobra.Command{
		Use:   "helpgpt",
		Short: `A chat assistant that schedules Zoom and Telemost meetings and relays everything else to an LLM.`,
		Run: func(_ *cobra.Command, _ []string) {
			instanceProfile := &profile.Profile{
				Mode:            viper.GetString("mode"),
				Addr:            viper.GetString("addr"),
				Port:            viper.GetInt("port"),
				Data:            viper.GetString("data"),
				StaticDir:       viper.GetString("static"),
				Timezone:        viper.GetString("timezone"),
				DefaultProvider: viper.GetString("default-provider"),
				Version:         version,
			}
			instanceProfile.FromEnv()
			if err := instanceProfile.Validate(); err != nil {
				slog.Error("invalid profile", "error", err)
				os.Exit(1)
			}
			setupLogger(instanceProfile)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			dbDriver, err := db.NewDBDriver(instanceProfile)
			if err != nil {
				slog.Error("failed to create db driver", "error", err)
				os.Exit(1)
			}
			storeInstance := store.New(dbDriver, instanceProfile)

			s, err := server.NewServer(ctx, instanceProfile, storeInstance)
			if err != nil {
				slog.Error("failed to create server", "error", err)
				os.Exit(1)
			}

			printGreetings(instanceProfile)

			if err := s.Start(ctx); err != nil {
				slog.Error("server stopped with error", "error", err)
				os.Exit(1)
			}
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8080)
	viper.SetDefault("data", "data")
	viper.SetDefault("static", "static")
	viper.SetDefault("timezone", "Europe/Moscow")
	viper.SetDefault("default-provider", profile.ProviderTelemost)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8080, "port of server")
	rootCmd.PersistentFlags().String("data", "data", "data directory holding the meeting store")
	rootCmd.PersistentFlags().String("static", "static", "directory served at /")
	rootCmd.PersistentFlags().String("timezone", "Europe/Moscow", "IANA timezone meetings are scheduled in")
	rootCmd.PersistentFlags().String("default-provider", profile.ProviderTelemost, `provider for meeting requests that name none, "zoom" or "telemost"`)

	for _, name := range []string{"mode", "addr", "port", "data", "static", "timezone", "default-provider"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("helpgpt")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func setupLogger(p *profile.Profile) {
	var handler slog.Handler
	if p.IsDev() {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

func printGreetings(p *profile.Profile) {
	fmt.Printf("help-gpt %s started successfully!\n", p.Version)
	if p.IsDev() {
		fmt.Fprintf(os.Stderr, "Development mode is enabled\n")
		fmt.Fprintf(os.Stderr, "Data: %s\n", p.Data)
	}
	if p.Addr == "" {
		fmt.Printf("Listening on port %d\n", p.Port)
	} else {
		fmt.Printf("Listening on %s:%d\n", p.Addr, p.Port)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
