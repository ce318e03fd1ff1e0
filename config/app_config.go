package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Luismorlan/mini_ledger/model"
	"gopkg.in/yaml.v2"
)

const (
	CONSENSUS_POW = "pow"
	CONSENSUS_POS = "pos"
)

// This is the global app config for the blockchain.
type AppConfig struct {
	// Which consensus seals the chain, "pow" or "pos". Fixed for the lifetime of a ledger.
	CONSENSUS string
	// How many leading 0s to form a valid hash.
	DIFFICULTY int
	// Give up mining after this many nonces. 0 mines until a nonce is found.
	MAX_ATTEMPTS uint64
	// Goroutines searching nonces in parallel. 0 or 1 mines on the calling goroutine.
	MINING_WORKERS int
	// Staking validators for PoS, in selection order.
	VALIDATORS []ValidatorConfig
	// "carry" or "self_pair".
	MERKLE_MODE string
	// debug|info|warn|error
	LOG_LEVEL string
	// json|text
	LOG_FORMAT string
	// Difficulties compared by the benchmark run.
	BENCH_DIFFICULTIES []int
	// Blocks appended per chain by the benchmark run.
	BENCH_BLOCKS int
}

type ValidatorConfig struct {
	NAME  string
	STAKE uint64
}

func Default() AppConfig {
	return AppConfig{
		CONSENSUS:  CONSENSUS_POW,
		DIFFICULTY: 2,
		VALIDATORS: []ValidatorConfig{
			{NAME: "Validator1", STAKE: 100},
			{NAME: "Validator2", STAKE: 200},
			{NAME: "Validator3", STAKE: 150},
		},
		MERKLE_MODE:        string(model.MERKLE_CARRY),
		LOG_LEVEL:          "info",
		LOG_FORMAT:         "text",
		BENCH_DIFFICULTIES: []int{2, 3, 4},
		BENCH_BLOCKS:       5,
	}
}

// ParseAppConfig reads a yaml config on top of the defaults. A missing file keeps the defaults.
// LEDGER_* environment variables override the file.
func ParseAppConfig(path string) (AppConfig, error) {
	c := Default()
	if path != "" {
		yamlFile, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return AppConfig{}, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(yamlFile, &c); err != nil {
			return AppConfig{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := c.loadEnv(); err != nil {
		return AppConfig{}, err
	}
	c.CONSENSUS = strings.ToLower(strings.TrimSpace(c.CONSENSUS))

	if err := c.Validate(); err != nil {
		return AppConfig{}, err
	}
	return c, nil
}

func (c *AppConfig) loadEnv() error {
	if v := envOr("LEDGER_CONSENSUS", ""); v != "" {
		c.CONSENSUS = v
	}
	var err error
	if c.DIFFICULTY, err = envOrInt("LEDGER_DIFFICULTY", c.DIFFICULTY); err != nil {
		return err
	}
	if c.MINING_WORKERS, err = envOrInt("LEDGER_MINING_WORKERS", c.MINING_WORKERS); err != nil {
		return err
	}
	c.MERKLE_MODE = envOr("LEDGER_MERKLE_MODE", c.MERKLE_MODE)
	c.LOG_LEVEL = envOr("LEDGER_LOG_LEVEL", c.LOG_LEVEL)
	c.LOG_FORMAT = envOr("LEDGER_LOG_FORMAT", c.LOG_FORMAT)
	return nil
}

// Validate checks the fields that do not depend on the consensus engine.
// Difficulty and stake are checked when the engine is built.
func (c AppConfig) Validate() error {
	switch c.CONSENSUS {
	case CONSENSUS_POW, CONSENSUS_POS:
	default:
		return fmt.Errorf("invalid consensus: %q", c.CONSENSUS)
	}

	switch model.MerkleMode(c.MERKLE_MODE) {
	case "", model.MERKLE_CARRY, model.MERKLE_SELF_PAIR:
	default:
		return fmt.Errorf("invalid merkle_mode: %q", c.MERKLE_MODE)
	}

	switch strings.ToLower(c.LOG_LEVEL) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level: %q", c.LOG_LEVEL)
	}

	switch strings.ToLower(c.LOG_FORMAT) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log_format: %q", c.LOG_FORMAT)
	}

	if c.MINING_WORKERS < 0 {
		return fmt.Errorf("mining_workers must not be negative: %d", c.MINING_WORKERS)
	}
	if c.BENCH_BLOCKS < 0 {
		return fmt.Errorf("bench_blocks must not be negative: %d", c.BENCH_BLOCKS)
	}
	return nil
}

// Validators converts the configured validator list, keeping its order.
func (c AppConfig) Validators() []model.Validator {
	out := make([]model.Validator, 0, len(c.VALIDATORS))
	for _, v := range c.VALIDATORS {
		out = append(out, model.Validator{Name: v.NAME, Stake: v.STAKE})
	}
	return out
}

func (c AppConfig) MerkleMode() model.MerkleMode {
	if c.MERKLE_MODE == "" {
		return model.MERKLE_CARRY
	}
	return model.MerkleMode(c.MERKLE_MODE)
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// envOrInt keeps def when key is unset and fails on a value that is not an integer.
func envOrInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
