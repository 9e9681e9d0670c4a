package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"podknight/internal/cutplan"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir string `toml:"work_dir"`
	LogDir  string `toml:"log_dir"`
}

// Encoder contains external encoder settings and concurrency limits.
type Encoder struct {
	FFmpegBinary     string `toml:"ffmpeg_binary"`
	FFprobeBinary    string `toml:"ffprobe_binary"`
	VideoConcurrency int    `toml:"video_concurrency"`
	// AudioConcurrency of 0 shares the video pool.
	AudioConcurrency int     `toml:"audio_concurrency"`
	MinFreeGiB       float64 `toml:"min_free_gib"`
}

// Storage contains S3-compatible object storage settings.
type Storage struct {
	Enabled           bool   `toml:"enabled"`
	Endpoint          string `toml:"endpoint"`
	Region            string `toml:"region"`
	Bucket            string `toml:"bucket"`
	Prefix            string `toml:"prefix"`
	AccessKey         string `toml:"access_key"`
	SecretKey         string `toml:"secret_key"`
	UseSSL            bool   `toml:"use_ssl"`
	OverwriteExisting bool   `toml:"overwrite_existing"`
}

// Notifications contains status-channel and push alert settings.
type Notifications struct {
	DiscordWebhook     string `toml:"discord_webhook"`
	NtfyTopic          string `toml:"ntfy_topic"`
	RequestTimeout     int    `toml:"request_timeout"`
	StatusInterval     int    `toml:"status_interval"`
	StatusInitialDelay int    `toml:"status_initial_delay"`
	StatusMaxChars     int    `toml:"status_max_chars"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Format is one [[formats]] entry.
type Format struct {
	Type     string   `toml:"type"`
	Prefix   string   `toml:"prefix"`
	Suffix   string   `toml:"suffix"`
	Encoding []string `toml:"encoding"`
}

// Config encapsulates all configuration values for podknight.
//
// Configuration sections by subsystem:
//   - Paths: scratch and log directories
//   - Encoder: ffmpeg/ffprobe binaries, pool sizes, disk headroom
//   - Storage: S3-compatible upload destination
//   - Notifications: Discord status channel and ntfy alerts
//   - Logging: log format, level, and retention
//   - Formats: renditions produced for every part
//   - Parts: per-part filename overrides or disabling
type Config struct {
	Paths         Paths              `toml:"paths"`
	Encoder       Encoder            `toml:"encoder"`
	Storage       Storage            `toml:"storage"`
	Notifications Notifications      `toml:"notifications"`
	Logging       Logging            `toml:"logging"`
	Formats       []Format           `toml:"formats"`
	Parts         []cutplan.PartSpec `toml:"parts"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		// Arrays replace the defaults wholesale when present in the file.
		cfg.Formats = nil
		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("podknight.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the work and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath is the run history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.LogDir, "history.db")
}

// PartSpecs returns the configured per-part overrides.
func (c *Config) PartSpecs() cutplan.PartSpecs {
	return append(cutplan.PartSpecs(nil), c.Parts...)
}

// Timeout is the HTTP timeout for notification calls.
func (n Notifications) Timeout() time.Duration {
	return time.Duration(n.RequestTimeout) * time.Second
}

// Interval is the status snapshot period.
func (n Notifications) Interval() time.Duration {
	return time.Duration(n.StatusInterval) * time.Second
}

// InitialDelay is the pause before the first status snapshot.
func (n Notifications) InitialDelay() time.Duration {
	return time.Duration(n.StatusInitialDelay) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
