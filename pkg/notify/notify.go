package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Package notify mirrors channel announcements into optional downstream
// sinks declared in a YAML/JSON config file. Mirroring is best-effort: sink
// failures are logged and never touch the announcement path.

const (
	// Supported sink types.
	TypeHTTP   = "http"
	TypeSNS    = "sns"
	TypeSQS    = "sqs"
	TypePubSub = "gcppubsub"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// configFile represents the structure of the notifiers configuration file.
type configFile struct {
	Sinks []SinkConfig `json:"sinks" yaml:"sinks"`
}

// SinkConfig represents a single sink entry declared in config files.
type SinkConfig struct {
	ID      string            `json:"id" yaml:"id"`
	Type    string            `json:"type" yaml:"type"`
	Enabled *bool             `json:"enabled" yaml:"enabled"`
	HTTP    *HTTPSinkConfig   `json:"http" yaml:"http"`
	SNS     *SNSSinkConfig    `json:"sns" yaml:"sns"`
	SQS     *SQSSinkConfig    `json:"sqs" yaml:"sqs"`
	PubSub  *PubSubSinkConfig `json:"gcppubsub" yaml:"gcppubsub"`
}

// HTTPSinkConfig holds generic HTTP sink settings.
type HTTPSinkConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// SNSSinkConfig holds AWS SNS specific settings. Static credentials are
// optional; the default AWS credential chain applies when absent.
type SNSSinkConfig struct {
	TopicARN  string `json:"topic_arn" yaml:"topic_arn"`
	Region    string `json:"region" yaml:"region"`
	AccessKey string `json:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
}

// SQSSinkConfig holds AWS SQS specific settings.
type SQSSinkConfig struct {
	QueueURL string `json:"uri" yaml:"uri"`
	Region   string `json:"region" yaml:"region"`
}

// PubSubSinkConfig holds Google Cloud Pub/Sub specific settings.
type PubSubSinkConfig struct {
	Project         string `json:"project" yaml:"project"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// ConfigRegistry materializes sink definitions loaded from config files.
type ConfigRegistry struct {
	mu    sync.RWMutex
	sinks []SinkConfig
	idx   map[string]SinkConfig
}

// LoadRegistry loads the sink registry from a YAML/JSON file.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("notifiers file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open notifiers file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read notifiers file: %w", err)
	}

	fileReg, err := parseSinkRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Sinks) == 0 {
		return nil, errors.New("notifiers file contains no sinks entries")
	}

	reg := &ConfigRegistry{
		sinks: make([]SinkConfig, len(fileReg.Sinks)),
		idx:   make(map[string]SinkConfig, len(fileReg.Sinks)),
	}

	for i := range fileReg.Sinks {
		cfg := sanitizeSinkConfig(fileReg.Sinks[i])
		if err := validateSinkConfig(cfg); err != nil {
			return nil, fmt.Errorf("sinks[%d]: %w", i, err)
		}
		if _, exists := reg.idx[cfg.ID]; exists {
			return nil, fmt.Errorf("duplicate sink id %q", cfg.ID)
		}
		reg.sinks[i] = cfg
		reg.idx[cfg.ID] = cfg
	}

	return reg, nil
}

// parseSinkRegistry attempts to decode the notifiers file content.
func parseSinkRegistry(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var reg configFile
		if err := d.fn(data, &reg); err == nil {
			return reg, nil
		}
	}

	return configFile{}, errors.New("notifiers file format not recognized (expected YAML or JSON)")
}

// sanitizeSinkConfig trims and normalizes the sink config fields.
func sanitizeSinkConfig(cfg SinkConfig) SinkConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if cfg.Enabled == nil {
		def := true
		cfg.Enabled = &def
	}
	if cfg.HTTP != nil {
		c := *cfg.HTTP
		c.URL = strings.TrimSpace(c.URL)
		c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
		if c.Method == "" {
			c.Method = httpDefaultMethod
		}
		c.Headers = sanitizeHeaders(c.Headers)
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		cfg.HTTP = &c
	}
	if cfg.SNS != nil {
		c := *cfg.SNS
		c.TopicARN = strings.TrimSpace(c.TopicARN)
		c.Region = strings.TrimSpace(c.Region)
		c.AccessKey = strings.TrimSpace(c.AccessKey)
		c.SecretKey = strings.TrimSpace(c.SecretKey)
		cfg.SNS = &c
	}
	if cfg.SQS != nil {
		c := *cfg.SQS
		c.QueueURL = strings.TrimSpace(c.QueueURL)
		c.Region = strings.TrimSpace(c.Region)
		cfg.SQS = &c
	}
	if cfg.PubSub != nil {
		c := *cfg.PubSub
		c.Project = strings.TrimSpace(c.Project)
		c.Topic = strings.TrimSpace(c.Topic)
		c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
		cfg.PubSub = &c
	}

	return cfg
}

// sanitizeHeaders trims and removes empty headers.
func sanitizeHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateSinkConfig checks that required fields are present.
func validateSinkConfig(cfg SinkConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}
	switch cfg.Type {
	case "":
		return fmt.Errorf("type is required for sink %q", cfg.ID)
	case TypeHTTP:
		if cfg.HTTP == nil {
			return fmt.Errorf("http config required for sink %q", cfg.ID)
		}
		if cfg.HTTP.URL == "" {
			return fmt.Errorf("http.url is required for sink %q", cfg.ID)
		}
	case TypeSNS:
		if cfg.SNS == nil {
			return fmt.Errorf("sns config required for sink %q", cfg.ID)
		}
		if cfg.SNS.TopicARN == "" {
			return fmt.Errorf("sns.topic_arn is required for sink %q", cfg.ID)
		}
		if cfg.SNS.Region == "" {
			return fmt.Errorf("sns.region is required for sink %q", cfg.ID)
		}
	case TypeSQS:
		if cfg.SQS == nil {
			return fmt.Errorf("sqs config required for sink %q", cfg.ID)
		}
		if cfg.SQS.QueueURL == "" {
			return fmt.Errorf("sqs.uri is required for sink %q", cfg.ID)
		}
		if cfg.SQS.Region == "" {
			return fmt.Errorf("sqs.region is required for sink %q", cfg.ID)
		}
	case TypePubSub:
		if cfg.PubSub == nil {
			return fmt.Errorf("gcppubsub config required for sink %q", cfg.ID)
		}
		if cfg.PubSub.Project == "" {
			return fmt.Errorf("gcppubsub.project is required for sink %q", cfg.ID)
		}
		if cfg.PubSub.Topic == "" {
			return fmt.Errorf("gcppubsub.topic is required for sink %q", cfg.ID)
		}
	}
	return nil
}

// ByID returns the sink config by id.
func (r *ConfigRegistry) ByID(id string) (SinkConfig, bool) {
	if r == nil {
		return SinkConfig{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return SinkConfig{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.idx[id]
	return cfg, ok
}

// All returns all configured sinks.
func (r *ConfigRegistry) All() []SinkConfig {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SinkConfig, len(r.sinks))
	copy(out, r.sinks)
	return out
}

// Enabled returns sinks that are enabled.
func (r *ConfigRegistry) Enabled() []SinkConfig {
	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]SinkConfig, 0, len(all))
	for _, cfg := range all {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// EnabledValue returns the enabled flag defaulting to true.
func (cfg SinkConfig) EnabledValue() bool {
	if cfg.Enabled == nil {
		return true
	}
	return *cfg.Enabled
}
