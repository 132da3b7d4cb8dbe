package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"kuldippatel.dev/dargo/internal/auth"
	"kuldippatel.dev/dargo/internal/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a token for the trackpad page",
	Args:  cobra.NoArgs,
	RunE:  executeToken,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with a fresh auth secret",
	Args:  cobra.NoArgs,
	RunE:  executeInit,
}

var (
	tokenTTL  time.Duration
	tokenHost string
	initForce bool
)

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (default from config)")
	tokenCmd.Flags().StringVar(&tokenHost, "host", "", "Host the page is reached at (default the listen address)")

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Replace an existing secret")
}

func executeToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.AuthSecret == "" {
		return errors.New("no auth_secret configured, run \"dargo init\" first")
	}

	ttl := cfg.TokenTTL
	if tokenTTL > 0 {
		ttl = tokenTTL
	}

	token, err := auth.Issue(cfg.AuthSecret, ttl)
	if err != nil {
		return err
	}

	host := tokenHost
	if host == "" {
		host = cfg.Listen
	}
	page := url.URL{
		Scheme:   "http",
		Host:     host,
		Path:     "/",
		RawQuery: url.Values{"token": {token}}.Encode(),
	}

	fmt.Fprintln(cmd.OutOrStdout(), page.String())
	return nil
}

func executeInit(cmd *cobra.Command, args []string) error {
	if configPath == "" {
		return errors.New("--config is required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.AuthSecret != "" && !initForce {
		return fmt.Errorf("%s already has a secret, use --force to replace it", configPath)
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return err
	}
	cfg.AuthSecret = hex.EncodeToString(secret)

	if err := cfg.Save(configPath); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "wrote", configPath)
	return nil
}
