package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// AppConfig holds the structure of the configuration
type AppConfig struct {
	Port           string `json:"port"`
	Blocksize      int    `json:"blocksize"`       // pixel size of one grid cell
	TileCount      int    `json:"tilecount"`       // cells per side
	TickInterval   int    `json:"tick_interval"`   // milliseconds between ticks
	ScoreIncrement int    `json:"score_increment"` // points per food
	Seed           int64  `json:"seed"`            // 0 picks a time based seed
	SkinDir        string `json:"skindir"`
	ShowGrid       bool   `json:"showgrid"`
	UI             string `json:"ui"` // "browser" or "terminal"
}

var (
	instance *AppConfig
	once     sync.Once
	loadErr  error
)

// Default returns the built-in settings
func Default() *AppConfig {
	return &AppConfig{
		Port:           "38870",
		Blocksize:      20,
		TileCount:      20,
		TickInterval:   150,
		ScoreIncrement: 10,
		SkinDir:        "./skins",
		UI:             "browser",
	}
}

// LoadConfig initializes and returns the instance of AppConfig
func LoadConfig(filePath string) (*AppConfig, error) {
	once.Do(func() {
		instance, loadErr = Load(filePath)
	})
	return instance, loadErr
}

// Load reads the file at filePath over the defaults, or creates it when missing
func Load(filePath string) (*AppConfig, error) {
	cfg := Default()
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := saveConfig(filePath, cfg); err != nil {
			return nil, err
		}
	} else if err := loadConfig(filePath, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", filePath, err)
	}
	return cfg, nil
}

// loadConfig loads the settings from the file
func loadConfig(filePath string, cfg *AppConfig) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", filePath, err)
	}
	return nil
}

// saveConfig saves the current settings to the file
func saveConfig(filePath string, cfg *AppConfig) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Validate checks that the settings describe a playable board
func (c *AppConfig) Validate() error {
	switch {
	case c.Blocksize < 3:
		return fmt.Errorf("blocksize must be at least 3, got %d", c.Blocksize)
	case c.TileCount < 2:
		return fmt.Errorf("tilecount must be at least 2, got %d", c.TileCount)
	case c.TickInterval <= 0:
		return fmt.Errorf("tick_interval must be positive, got %d", c.TickInterval)
	case c.ScoreIncrement < 0:
		return fmt.Errorf("score_increment must not be negative, got %d", c.ScoreIncrement)
	case c.UI != "browser" && c.UI != "terminal":
		return fmt.Errorf("ui must be browser or terminal, got %q", c.UI)
	}
	return nil
}

// Interval is the tick period
func (c *AppConfig) Interval() time.Duration {
	return time.Duration(c.TickInterval) * time.Millisecond
}

// CanvasSize is the side of the drawing surface in pixels
func (c *AppConfig) CanvasSize() int {
	return c.TileCount * c.Blocksize
}

// GetConfigValue returns the value of the configuration by key
func GetConfigValue(key string) interface{} {
	if instance == nil {
		return ""
	}
	switch key {
	case "port":
		return instance.Port
	case "blocksize":
		return instance.Blocksize
	case "tilecount":
		return instance.TileCount
	case "tick_interval":
		return instance.TickInterval
	case "score_increment":
		return instance.ScoreIncrement
	case "seed":
		return instance.Seed
	case "skindir":
		return instance.SkinDir
	case "showgrid":
		return instance.ShowGrid
	case "ui":
		return instance.UI
	default:
		return ""
	}
}
