package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/charmbracelet/huh"
	"github.com/flemzord/botapi/internal/config"
	"github.com/flemzord/botapi/internal/security"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var tokenShape = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configCheckCmd(), configShowCmd(), configInitCmd())
	return cmd
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [path]",
		Short: "Validate configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := cmd.Flags().Set("config", args[0]); err != nil {
					return err
				}
			}
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			if path == "" {
				path = "environment"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration OK (%s)\n", path)
			return nil
		},
	}
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			raw, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			var doc map[string]any
			if err := yaml.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("config: re-reading: %w", err)
			}

			redactor := security.NewRedactor()
			redactor.AddLiteral(cfg.Token)
			redactor.RedactMap(doc)

			out, err := yaml.Marshal(doc)
			if err != nil {
				return fmt.Errorf("config: encoding: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

// initAnswers collects the values asked by `config init`.
type initAnswers struct {
	Token       string
	APIURL      string
	LogLevel    string
	JournalPath string
	MetricsAddr string
}

func (a initAnswers) config() *config.Config {
	cfg := &config.Config{
		Version: "1",
		Token:   a.Token,
		APIURL:  a.APIURL,
		Log:     config.LogConfig{Level: a.LogLevel},
		Journal: config.JournalConfig{Path: a.JournalPath},
		Telemetry: config.TelemetryConfig{
			MetricsAddr: a.MetricsAddr,
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func validateTokenShape(s string) error {
	if !tokenShape.MatchString(s) {
		return errors.New("expected <bot_id>:<hash> as issued by BotFather")
	}
	return nil
}

// initForm asks for the values that have no sensible default.
func initForm(a *initAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Bot token").
				Description("From @BotFather. Use ${BOTAPI_TOKEN} to keep it out of the file.").
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if s == "${"+config.TokenEnv+"}" {
						return nil
					}
					return validateTokenShape(s)
				}).
				Value(&a.Token),
			huh.NewInput().
				Title("Bot API URL").
				Value(&a.APIURL),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&a.LogLevel),
			huh.NewInput().
				Title("Call journal path").
				Description("SQLite file recording every call. Leave empty to disable.").
				Value(&a.JournalPath),
			huh.NewInput().
				Title("Metrics address").
				Description("host:port for /metrics during serve and mcp. Leave empty to disable.").
				Value(&a.MetricsAddr),
		),
	)
}

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file interactively",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().Bool("force", false, "Overwrite an existing file")
	cmd.Flags().Bool("no-input", false, "Skip the form and use flags and defaults only")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = config.DefaultPath()
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("config: %s already exists (use --force to overwrite)", path)
		}

		answers := initAnswers{
			APIURL:   config.DefaultAPIURL,
			LogLevel: config.DefaultLogLevel,
		}
		answers.Token, _ = cmd.Flags().GetString("token")
		if v, _ := cmd.Flags().GetString("api-url"); v != "" {
			answers.APIURL = v
		}
		answers.JournalPath, _ = cmd.Flags().GetString("journal")

		if noInput, _ := cmd.Flags().GetBool("no-input"); !noInput {
			if err := initForm(&answers).Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return errors.New("config: init aborted")
				}
				return err
			}
		} else if answers.Token == "" {
			answers.Token = "${" + config.TokenEnv + "}"
		}

		if err := writeConfig(path, answers.config()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	}
	return cmd
}

// writeConfig writes cfg with owner-only permissions; it holds the token.
func writeConfig(path string, cfg *config.Config) error {
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("config: create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
