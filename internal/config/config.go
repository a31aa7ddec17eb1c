// Package config loads chat-dispatch runtime settings from a small INI-flavored
// file plus environment variable overrides.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	settingsFile     = "config/setting.ini"
	defaultEnv       = "dev"
	envConfigPattern = "config/%s/dispatch.ini"
)

// Settings contains global toggles such as the active environment.
type Settings struct {
	Environment string
	Defaults    map[string]string
}

// Config describes runtime options for the dispatcher process.
type Config struct {
	Environment string

	ListenAddress      string // chat API (create/poll/health)
	AdminListenAddress string // admin + metrics
	LogFile            string
	LogLevel           string

	DispatcherInterval time.Duration
	MonitorInterval    time.Duration

	MissedPollThreshold   int
	ExpectedPollInterval  time.Duration
	ShiftHandoff          time.Duration

	AssignmentRetries int
	AssignmentBackoff time.Duration

	QueueMultiplier float64
	CapacityTTL     time.Duration

	RateLimitCreatePerUser float64 // CreateSession tokens/sec per userId
	RateLimitCreateBurst   float64
	RateLimitPollPerUser   float64 // Poll tokens/sec per sessionId
	RateLimitPollBurst     float64

	// RosterOverrides lets an operator relocate a team's UTC shift window
	// without touching the fixed roster names; keyed by team code (A|B|C); the Overflow window is not overridable.
	RosterOverrides map[string]ShiftOverride
}

// ShiftOverride replaces a team's [start,end) UTC shift window expressed as "HH:MM".
type ShiftOverride struct {
	Start string
	End   string
}

// Default returns the documented defaults with no file/env overrides applied.
func Default() Config {
	return Config{
		Environment:             defaultEnv,
		ListenAddress:           ":8090",
		AdminListenAddress:      ":8091",
		LogLevel:                "info",
		DispatcherInterval:      2 * time.Second,
		MonitorInterval:         5 * time.Second,
		MissedPollThreshold:     3,
		ExpectedPollInterval:    time.Second,
		ShiftHandoff:            5 * time.Minute,
		AssignmentRetries:       3,
		AssignmentBackoff:       100 * time.Millisecond,
		QueueMultiplier:         1.5,
		CapacityTTL:             5 * time.Second,
		RateLimitCreatePerUser:  0.2, // 1 per 5s
		RateLimitCreateBurst:    1,
		RateLimitPollPerUser:    2,
		RateLimitPollBurst:      4,
		RosterOverrides:         map[string]ShiftOverride{},
	}
}

// Load reads config/setting.ini (and the environment-specific overlay it selects),
// applies CHATDISPATCH_* environment variable overrides, and returns the merged Config.
func Load(root string) (Config, error) {
	if root == "" {
		root = "."
	}
	s, err := loadSettings(root)
	if err != nil {
		return Config{}, err
	}

	envValues, err := parseINI(filepath.Join(root, fmt.Sprintf(envConfigPattern, s.Environment)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			envValues = map[string]string{}
		} else {
			return Config{}, err
		}
	}

	merged := make(map[string]string, len(s.Defaults)+len(envValues))
	for k, v := range s.Defaults {
		merged[k] = v
	}
	for k, v := range envValues {
		merged[k] = v
	}

	cfg := Default()
	cfg.Environment = s.Environment
	cfg.ListenAddress = firstNonEmpty(os.Getenv("CHATDISPATCH_LISTEN_ADDRESS"), merged["listen_address"], cfg.ListenAddress)
	cfg.AdminListenAddress = firstNonEmpty(os.Getenv("CHATDISPATCH_ADMIN_LISTEN_ADDRESS"), merged["admin_listen_address"], cfg.AdminListenAddress)
	cfg.LogFile = firstNonEmpty(os.Getenv("CHATDISPATCH_LOG_FILE"), merged["log_file"])
	cfg.LogLevel = firstNonEmpty(os.Getenv("CHATDISPATCH_LOG_LEVEL"), merged["log_level"], cfg.LogLevel)

	if v, err := parseOptionalDuration(firstNonEmpty(os.Getenv("CHATDISPATCH_DISPATCHER_INTERVAL"), merged["dispatcher_interval"])); err != nil {
		return Config{}, err
	} else if v > 0 {
		cfg.DispatcherInterval = v
	}
	if v, err := parseOptionalDuration(firstNonEmpty(os.Getenv("CHATDISPATCH_MONITOR_INTERVAL"), merged["monitor_interval"])); err != nil {
		return Config{}, err
	} else if v > 0 {
		cfg.MonitorInterval = v
	}

	cfg.MissedPollThreshold = parseOptionalInt(firstNonEmpty(os.Getenv("CHATDISPATCH_MISSED_POLL_THRESHOLD"), merged["missed_poll_threshold"]), cfg.MissedPollThreshold)

	if v, err := parseOptionalFloat(firstNonEmpty(os.Getenv("CHATDISPATCH_RATE_CREATE_PER_SEC"), merged["rate_create_per_sec"])); err != nil {
		return Config{}, err
	} else if v > 0 {
		cfg.RateLimitCreatePerUser = v
	}
	if v, err := parseOptionalFloat(firstNonEmpty(os.Getenv("CHATDISPATCH_RATE_POLL_PER_SEC"), merged["rate_poll_per_sec"])); err != nil {
		return Config{}, err
	} else if v > 0 {
		cfg.RateLimitPollPerUser = v
	}

	cfg.RosterOverrides = parseRosterOverrides(firstNonEmpty(os.Getenv("CHATDISPATCH_ROSTER_OVERRIDES"), merged["roster_overrides"]))

	return cfg, nil
}

func loadSettings(root string) (Settings, error) {
	values, err := parseINI(filepath.Join(root, settingsFile))
	if errors.Is(err, os.ErrNotExist) {
		return Settings{Environment: defaultEnv, Defaults: map[string]string{}}, nil
	}
	if err != nil {
		return Settings{}, err
	}
	env := values["environment"]
	if env == "" {
		env = defaultEnv
	}
	defaults := make(map[string]string)
	for k, v := range values {
		if k == "environment" {
			continue
		}
		defaults[k] = v
	}
	return Settings{Environment: env, Defaults: defaults}, nil
}

func parseINI(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		values[strings.ToLower(key)] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func parseOptionalInt(v string, fallback int) int {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		return parsed
	}
	return fallback
}

func parseOptionalFloat(v string) (float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float %q: %w", v, err)
	}
	return parsed, nil
}

func parseOptionalDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", v, err)
	}
	return d, nil
}

// parseRosterOverrides parses "A=00:00-08:05,B=07:55-16:05" into a ShiftOverride map.
func parseRosterOverrides(input string) map[string]ShiftOverride {
	out := map[string]ShiftOverride{}
	if strings.TrimSpace(input) == "" {
		return out
	}
	for _, entry := range strings.Split(input, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		kv := strings.SplitN(entry, "=", 2)
		if len(kv) != 2 {
			continue
		}
		team := strings.TrimSpace(kv[0])
		window := strings.SplitN(strings.TrimSpace(kv[1]), "-", 2)
		if len(window) != 2 {
			continue
		}
		out[team] = ShiftOverride{Start: strings.TrimSpace(window[0]), End: strings.TrimSpace(window[1])}
	}
	return out
}
