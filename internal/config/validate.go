package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateFormats(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if c.Encoder.VideoConcurrency <= 0 {
		return errors.New("encoder.video_concurrency must be positive")
	}
	if c.Encoder.AudioConcurrency < 0 {
		return errors.New("encoder.audio_concurrency must be >= 0 (0 shares the video pool)")
	}
	if c.Encoder.MinFreeGiB < 0 {
		return errors.New("encoder.min_free_gib must be >= 0")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.Enabled {
		return nil
	}
	if c.Storage.Endpoint == "" {
		return errors.New("storage.endpoint must be set when storage.enabled is true")
	}
	if strings.Contains(c.Storage.Endpoint, "://") {
		return fmt.Errorf("storage.endpoint must be host[:port] without a scheme, got %q", c.Storage.Endpoint)
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage.bucket must be set when storage.enabled is true")
	}
	if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
		return errors.New("storage.access_key and storage.secret_key must be set when storage.enabled is true (or set AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY)")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if err := ensurePositiveMap(map[string]int{
		"notifications.request_timeout":  c.Notifications.RequestTimeout,
		"notifications.status_interval":  c.Notifications.StatusInterval,
		"notifications.status_max_chars": c.Notifications.StatusMaxChars,
	}); err != nil {
		return err
	}
	if c.Notifications.StatusInitialDelay < 0 {
		return errors.New("notifications.status_initial_delay must be >= 0")
	}
	for key, raw := range map[string]string{
		"notifications.discord_webhook": c.Notifications.DiscordWebhook,
		"notifications.ntfy_topic":      c.Notifications.NtfyTopic,
	} {
		if raw == "" {
			continue
		}
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return fmt.Errorf("%s must be an http(s) URL", key)
		}
	}
	return nil
}

func (c *Config) validateFormats() error {
	if len(c.Formats) == 0 {
		return errors.New("at least one [[formats]] entry is required")
	}
	seen := make(map[string]int, len(c.Formats))
	for i, f := range c.Formats {
		if f.Type != "video" && f.Type != "audio" {
			return fmt.Errorf("formats[%d].type: unsupported value %q (want video or audio)", i, f.Type)
		}
		key := f.Type + "\x00" + f.Prefix + "\x00" + f.Suffix
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("formats[%d] produces the same filenames as formats[%d]; give one a prefix or suffix", i, prev)
		}
		seen[key] = i
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
