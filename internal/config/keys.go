package config

import "os"

// KeySource represents where a secret comes from.
type KeySource string

const (
	KeySourceEnv    KeySource = "env"
	KeySourceConfig KeySource = "config"
	KeySourceNone   KeySource = "none"
)

// KeyStatus represents the status of a secret setting.
type KeyStatus struct {
	Name   string    `json:"name"`
	Source KeySource `json:"source"`
	IsSet  bool      `json:"is_set"`
	Masked string    `json:"masked,omitempty"` // e.g., "abc...xyz"
}

// CheckKeys returns the status of every secret setting.
func CheckKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("API Token", cfg.API.Token, EnvPrefix+"_API_TOKEN"),
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value, envVar string) KeyStatus {
	status := KeyStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value != "" {
		if os.Getenv(envVar) != "" {
			status.Source = KeySourceEnv
		} else {
			status.Source = KeySourceConfig
		}
		status.Masked = maskKey(value)
	} else {
		status.Source = KeySourceNone
	}

	return status
}

// maskKey masks a secret for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
