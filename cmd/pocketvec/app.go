package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/hupe1980/pocketvec"
	"github.com/hupe1980/pocketvec/cipher"
	"github.com/hupe1980/pocketvec/codec"
	"github.com/spf13/cobra"
)

// app is the per-invocation state resolved from the config file and flags.
type app struct {
	cfg    *Config
	logger *pocketvec.Logger
	cipher cipher.Cipher
	codec  codec.Codec
	asJSON bool
}

func newApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	overrideString(cmd, "store", &cfg.Store)
	overrideString(cmd, "key-env", &cfg.KeyEnv)
	overrideString(cmd, "cipher", &cfg.Cipher)
	overrideString(cmd, "log-level", &cfg.Log.Level)
	overrideString(cmd, "log-format", &cfg.Log.Format)

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	c, err := cipher.ByName(cfg.Cipher)
	if err != nil {
		return nil, err
	}

	cd, err := codec.ByName(cfg.Codec)
	if err != nil {
		return nil, err
	}

	asJSON, _ := cmd.Flags().GetBool("json")

	return &app{cfg: cfg, logger: logger, cipher: c, codec: cd, asJSON: asJSON}, nil
}

func overrideString(cmd *cobra.Command, flag string, dst *string) {
	if !cmd.Flags().Changed(flag) {
		return
	}
	v, _ := cmd.Flags().GetString(flag)
	*dst = v
}

func newLogger(lc LogConfig) (*pocketvec.Logger, error) {
	var level slog.Level
	if lc.Level != "" {
		if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}

	switch strings.ToLower(lc.Format) {
	case "", "text":
		return pocketvec.NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
	case "json":
		return pocketvec.NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", lc.Format)
	}
}

// key returns the store key from the configured environment variable.
func (a *app) key() string {
	if a.cfg.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.cfg.KeyEnv)
}

func (a *app) options(extra ...pocketvec.Option) []pocketvec.Option {
	opts := []pocketvec.Option{
		pocketvec.WithLogger(a.logger),
		pocketvec.WithCipher(a.cipher),
		pocketvec.WithChecksum(a.cfg.Checksum),
	}
	return append(opts, extra...)
}

// loadHeap opens the growable store at path. With allowMissing a missing
// file yields an empty store.
func (a *app) loadHeap(path string, allowMissing bool, extra ...pocketvec.Option) (*pocketvec.HeapStore, error) {
	store := pocketvec.NewHeapStore(a.options(extra...)...)

	if _, err := os.Stat(path); err != nil {
		if allowMissing && os.IsNotExist(err) {
			return store, nil
		}
		return nil, err
	}

	if _, err := store.Load(path, a.key()); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return store, nil
}

func (a *app) writeJSON(cmd *cobra.Command, v any) error {
	data, err := a.codec.Marshal(v)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))

	return err
}

func parseVector(s string) ([]float32, error) {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "[]"))
	if s == "" {
		return nil, pocketvec.ErrEmptyVector
	}

	parts := strings.Split(s, ",")
	v := make([]float32, len(parts))

	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("vector element %d: %w", i, err)
		}
		v[i] = float32(f)
	}

	return v, nil
}
