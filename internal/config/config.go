package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration for the dashboard service. The PI*
// fields are bootstrap defaults only; the persisted settings document
// overrides them once the operator saves a configuration.
type Config struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	SettingsPath      string
	HistorySQLitePath string
	HistoryLimit      int

	DefaultMode      string
	PIHostname       string
	PIAssetServer    string
	PIDatabase       string
	PIParentPath     string
	PITemplateFilter string
	PIRequestTimeout time.Duration
	PIProbeTimeout   time.Duration

	MaxPads        int
	MaxWellsPerPad int

	SimSeed int64
}

// FromEnv loads configuration from environment variables with sensible
// defaults, after applying env-file bootstrap defaults.
func FromEnv() Config {
	loadConfigDefaultsFromFile()
	loadSecretsDefaultsFromFile()

	return Config{
		ListenAddr:      getEnv("APP_LISTEN_ADDR", ":8080"),
		ReadTimeout:     time.Duration(getEnvInt("APP_READ_TIMEOUT_SEC", 10)) * time.Second,
		WriteTimeout:    time.Duration(getEnvInt("APP_WRITE_TIMEOUT_SEC", 60)) * time.Second,
		ShutdownTimeout: time.Duration(getEnvInt("APP_SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,

		SettingsPath:      getEnv("APP_SETTINGS_PATH", "./well-dashboard-settings.json"),
		HistorySQLitePath: getEnv("APP_HISTORY_SQLITE_PATH", ""),
		HistoryLimit:      getEnvInt("APP_HISTORY_LIMIT", 20),

		DefaultMode:      getEnv("APP_DEFAULT_MODE", "simulated"),
		PIHostname:       getEnv("APP_PI_HOSTNAME", ""),
		PIAssetServer:    getEnv("APP_PI_ASSET_SERVER", ""),
		PIDatabase:       getEnv("APP_PI_DATABASE", ""),
		PIParentPath:     getEnv("APP_PI_PARENT_PATH", ""),
		PITemplateFilter: getEnv("APP_PI_TEMPLATE_FILTER", ""),
		PIRequestTimeout: time.Duration(getEnvInt("APP_PI_REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		PIProbeTimeout:   time.Duration(getEnvInt("APP_PI_PROBE_TIMEOUT_SEC", 10)) * time.Second,

		MaxPads:        getEnvInt("APP_MAX_PADS", 10),
		MaxWellsPerPad: getEnvInt("APP_MAX_WELLS_PER_PAD", 20),

		SimSeed: int64(getEnvInt("APP_SIM_SEED", 0)),
	}
}

func loadConfigDefaultsFromFile() {
	bootstrapCandidates := []string{
		"./pi-well-dashboard.env",
		"/etc/default/pi-well-dashboard",
	}

	for _, candidate := range bootstrapCandidates {
		abs := candidate
		if !filepath.IsAbs(candidate) {
			if wd, err := os.Getwd(); err == nil {
				abs = filepath.Join(wd, candidate)
			}
		}
		_ = applyEnvDefaultsFromFile(abs)
	}

	candidates := make([]string, 0, 2)
	if explicit := strings.TrimSpace(os.Getenv("APP_CONFIG_FILE")); explicit != "" {
		candidates = append(candidates, explicit)
	}
	candidates = append(candidates, "/etc/pi-well-dashboard/config.env")

	for _, candidate := range candidates {
		abs := candidate
		if !filepath.IsAbs(candidate) {
			if wd, err := os.Getwd(); err == nil {
				abs = filepath.Join(wd, candidate)
			}
		}

		if err := applyEnvDefaultsFromFile(abs); err == nil {
			return
		}
	}
}

func loadSecretsDefaultsFromFile() {
	candidates := make([]string, 0, 3)
	if explicit := strings.TrimSpace(os.Getenv("APP_SECRETS_FILE")); explicit != "" {
		candidates = append(candidates, explicit)
	}
	if credDir := strings.TrimSpace(os.Getenv("CREDENTIALS_DIRECTORY")); credDir != "" {
		credName := strings.TrimSpace(os.Getenv("APP_SECRETS_CREDENTIAL_NAME"))
		if credName == "" {
			credName = "app-secrets"
		}
		candidates = append(candidates, filepath.Join(credDir, credName))
	}
	candidates = append(candidates, "/etc/pi-well-dashboard/secrets.env")
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if err := applyEnvDefaultsFromFile(candidate); err == nil {
			return
		}
	}
}

func applyEnvDefaultsFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.TrimSpace(kv[0])
		val := strings.TrimSpace(kv[1])
		if key == "" {
			continue
		}

		if len(val) >= 2 {
			if (val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'') {
				val = val[1 : len(val)-1]
			}
		}

		if os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}

	return scanner.Err()
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}
