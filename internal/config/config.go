/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"scenecraft/internal/domain"
	"scenecraft/internal/storage"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	DataDir     string `yaml:"data_dir"`
	Storage     string `yaml:"storage"` // file | sqlite | postgres | memory
	PostgresDSN string `yaml:"postgres_dsn"`
	Session     string `yaml:"session"`
}

type ServicesConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type EditorConfig struct {
	DebounceMs    int    `yaml:"debounce_ms"`
	MaxLineLength int    `yaml:"max_line_length"`
	AspectRatio   string `yaml:"aspect_ratio"`
	RevisionsKeep int    `yaml:"revisions_keep"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	General       GeneralConfig  `yaml:"general"`
	Services      ServicesConfig `yaml:"services"`
	Editor        EditorConfig   `yaml:"editor"`
	Server        ServerConfig   `yaml:"server"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{DataDir: defaultDataDir(), Storage: storage.BackendFile, Session: "default"},
		Services:      ServicesConfig{BaseURL: "http://localhost:8080/api", TimeoutMs: 60000},
		Editor:        EditorConfig{DebounceMs: 500, MaxLineLength: 86, AspectRatio: string(domain.Landscape), RevisionsKeep: 50},
		Server:        ServerConfig{Addr: ":8090"},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile       = "SCN_CONFIG"
	EnvDataDir          = "SCN_DATA_DIR"
	EnvStorage          = "SCN_STORAGE"
	EnvPostgresDSN      = "SCN_PG_DSN"
	EnvSession          = "SCN_SESSION"
	EnvServicesURL      = "SCN_SERVICES_URL"
	EnvServicesTimeout  = "SCN_SERVICES_TIMEOUT_MS"
	EnvServicesTLSInsec = "SCN_TLS_INSECURE"
	EnvDebounceMs       = "SCN_DEBOUNCE_MS"
	EnvAspectRatio      = "SCN_ASPECT_RATIO"
	EnvServerAddr       = "SCN_ADDR"
	EnvServiceToken     = "SCN_SERVICE_TOKEN"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "SCN_LOG_LEVEL"
	EnvLogFormat = "SCN_LOG_FORMAT"
	EnvLogSource = "SCN_LOG_SOURCE"
	EnvLogFile   = "SCN_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService = "Scenecraft"
	keyringToken   = "service_token"
)

// tokenStore abstracts keyring, so we can stub in tests.
var tokenStore TokenStore = osKeyring{}

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements TokenStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

func baseDir() string {
	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(base, "Scenecraft")
	case "darwin":
		return filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Scenecraft")
	default: // linux and others
		return filepath.Join(os.Getenv("HOME"), ".config", "scenecraft")
	}
}

func defaultDataDir() string { return filepath.Join(baseDir(), "data") }

// ConfigPath returns the per-user config file path. SCN_CONFIG replaces it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	base := baseDir()
	if base == "" || base == filepath.Join(".config", "scenecraft") {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// LoadDotEnv loads .env files into the process environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// It also loads the service token from keyring (not kept inside the struct; returned separately).
// SCN_SERVICE_TOKEN takes precedence over the keyring.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	if tok := strings.TrimSpace(os.Getenv(EnvServiceToken)); tok != "" {
		return cfg, tok, nil
	}
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into OS keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

// ClearToken removes the service token from the keyring.
func ClearToken() error {
	err := tokenStore.Delete(keyringService, keyringToken)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	setString(&dst.General.DataDir, src.General.DataDir)
	setString(&dst.General.Storage, strings.ToLower(src.General.Storage))
	setString(&dst.General.PostgresDSN, src.General.PostgresDSN)
	setString(&dst.General.Session, src.General.Session)

	setString(&dst.Services.BaseURL, src.Services.BaseURL)
	if src.Services.TimeoutMs != 0 {
		dst.Services.TimeoutMs = src.Services.TimeoutMs
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Services.TLSInsecure = src.Services.TLSInsecure

	if src.Editor.DebounceMs != 0 {
		dst.Editor.DebounceMs = src.Editor.DebounceMs
	}
	if src.Editor.MaxLineLength > 0 {
		dst.Editor.MaxLineLength = src.Editor.MaxLineLength
	}
	if ar, err := domain.ParseAspectRatio(src.Editor.AspectRatio); err == nil {
		dst.Editor.AspectRatio = string(ar)
	}
	if src.Editor.RevisionsKeep != 0 {
		dst.Editor.RevisionsKeep = src.Editor.RevisionsKeep
	}
	setString(&dst.Server.Addr, src.Server.Addr)

	// logging
	setString(&dst.Logging.Level, strings.ToLower(src.Logging.Level))
	setString(&dst.Logging.Format, strings.ToLower(src.Logging.Format))
	dst.Logging.Source = src.Logging.Source
	setString(&dst.Logging.File, src.Logging.File)
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func envBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	env := func(k string) string { return strings.TrimSpace(os.Getenv(k)) }
	setString(&cfg.General.DataDir, env(EnvDataDir))
	setString(&cfg.General.Storage, strings.ToLower(env(EnvStorage)))
	setString(&cfg.General.PostgresDSN, env(EnvPostgresDSN))
	setString(&cfg.General.Session, env(EnvSession))
	setString(&cfg.Services.BaseURL, env(EnvServicesURL))
	if n, err := strconv.Atoi(env(EnvServicesTimeout)); err == nil {
		cfg.Services.TimeoutMs = n
	}
	if v := env(EnvServicesTLSInsec); v != "" {
		cfg.Services.TLSInsecure = envBool(v)
	}
	if n, err := strconv.Atoi(env(EnvDebounceMs)); err == nil {
		cfg.Editor.DebounceMs = n
	}
	if ar, err := domain.ParseAspectRatio(env(EnvAspectRatio)); err == nil {
		cfg.Editor.AspectRatio = string(ar)
	}
	setString(&cfg.Server.Addr, env(EnvServerAddr))
	// logging overrides
	setString(&cfg.Logging.Level, strings.ToLower(env(EnvLogLevel)))
	setString(&cfg.Logging.Format, strings.ToLower(env(EnvLogFormat)))
	if v := env(EnvLogSource); v != "" {
		cfg.Logging.Source = envBool(v)
	}
	setString(&cfg.Logging.File, env(EnvLogFile))
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	names := map[string]string{
		"general.data_dir":      EnvDataDir,
		"general.storage":       EnvStorage,
		"general.postgres_dsn":  EnvPostgresDSN,
		"general.session":       EnvSession,
		"services.base_url":     EnvServicesURL,
		"services.timeout_ms":   EnvServicesTimeout,
		"services.tls_insecure": EnvServicesTLSInsec,
		"editor.debounce_ms":    EnvDebounceMs,
		"editor.aspect_ratio":   EnvAspectRatio,
		"server.addr":           EnvServerAddr,
		"logging.level":         EnvLogLevel,
		"logging.format":        EnvLogFormat,
		"logging.source":        EnvLogSource,
		"logging.file":          EnvLogFile,
	}
	if n, ok := names[key]; ok && os.Getenv(n) != "" {
		return n, true
	}
	return "", false
}

// Timeout returns the per-request service timeout.
func (s ServicesConfig) Timeout() time.Duration {
	if s.TimeoutMs <= 0 {
		return time.Duration(Defaults().Services.TimeoutMs) * time.Millisecond
	}
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// Debounce returns the edit debounce window; zero disables debouncing.
func (e EditorConfig) Debounce() time.Duration {
	if e.DebounceMs <= 0 {
		return 0
	}
	return time.Duration(e.DebounceMs) * time.Millisecond
}

// StorageOptions maps the config onto storage.Open options.
func (c AppConfig) StorageOptions() storage.Options {
	return storage.Options{
		Backend:       c.General.Storage,
		Dir:           c.General.DataDir,
		DSN:           c.General.PostgresDSN,
		Session:       c.General.Session,
		KeepBackups:   10,
		KeepRevisions: c.Editor.RevisionsKeep,
	}
}
