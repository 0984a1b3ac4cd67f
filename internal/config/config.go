package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  Server  `yaml:"server"`
	Session Session `yaml:"session"`
	Repo    Repo    `yaml:"repo"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Session struct {
	// TTLSeconds is how long a session stays valid after login.
	TTLSeconds int    `yaml:"ttl_seconds"`
	CookieName string `yaml:"cookie_name"`
}

type Repo struct {
	Path string `yaml:"path"`
}

func New() (*Config, error) {
	return &Config{
		Server: Server{
			Port: 8123,
		},
		Session: Session{
			TTLSeconds: 3600,
			CookieName: "session",
		},
		Repo: Repo{
			Path: "accounts.json",
		},
	}, nil
}

// Load reads a yaml file over the defaults from New.
func Load(path string) (*Config, error) {
	c, err := New()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(b, c)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLSeconds) * time.Second
}
