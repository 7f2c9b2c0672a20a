// Skybot is a Discord bot built on go-sarah that bundles the cogs of this module.
//
// Usage:
//
//	export SKYBOT_DISCORD_TOKEN="your-bot-token"
//	go run . --config skybot.yml
//
// Then, in a Discord channel where the bot is present, type:
//
//	.pages
//	.color #ff8800
//	.modules
//	.help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	discord "github.com/oklahomer/go-sarah-discordkit"
	"github.com/oklahomer/go-sarah-discordkit/cogs"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "skybot",
		Short:         "Run the Skybot Discord bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			setupLogger(cmd)

			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := loadConfig(v, configPath)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return run(ctx, cfg)
		},
	}

	cmd.Flags().StringP("config", "c", "", "Path to the config file")
	cmd.Flags().StringP("token", "t", "", "Discord bot token; overrides "+envPrefix+"_DISCORD_TOKEN")
	cmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.Flags().Bool("json", false, "Log in JSON format")
	_ = v.BindPFlag("discord.token", cmd.Flags().Lookup("token"))

	return cmd
}

// setupLogger routes the go-kasumi log output of go-sarah, the adapter and the cogs to logrus.
func setupLogger(cmd *cobra.Command) {
	l := logrus.New()
	l.SetOutput(os.Stderr)

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	logger.SetLogger(l)
}

func run(ctx context.Context, cfg *appConfig) error {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = cfg.Discord.Intents

	adapter, err := discord.NewAdapter(cfg.Discord, discord.WithSession(session))
	if err != nil {
		return fmt.Errorf("failed to create adapter: %w", err)
	}

	storage := sarah.NewUserContextStorage(sarah.NewCacheConfig())
	sarah.RegisterBot(sarah.NewBot(adapter, sarah.BotWithStorage(storage)))

	registry := cogs.NewRegistry()
	err = registry.Add(
		cogs.NewModules(registry, cfg.Cogs.Superusers),
		cogs.NewColor(session, cfg.Cogs.ColorRolePrefix),
		cogs.NewPages(ctx, session, cfg.Cogs),
		&cogs.Ping{},
	)
	if err != nil {
		return fmt.Errorf("failed to register cogs: %w", err)
	}

	props, err := registry.CommandProps(discord.DISCORD)
	if err != nil {
		return err
	}
	for _, p := range props {
		sarah.RegisterCommandProps(p)
	}

	if err := sarah.Run(ctx, sarah.NewConfig()); err != nil {
		return fmt.Errorf("failed to run: %w", err)
	}

	logger.Infof("Skybot is running with cogs %v. Press Ctrl+C to stop.", registry.Names())
	<-ctx.Done()
	logger.Infof("Shutting down...")

	return nil
}
