package config

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/nodewee/page-ocr/pkg/constants"
	"github.com/nodewee/page-ocr/pkg/types"
	"github.com/nodewee/page-ocr/pkg/utils"
)

const (
	ConfigFileName = "config.json"
	AppDirName     = ".page-ocr"

	// ConfigDirEnv relocates the configuration directory
	ConfigDirEnv = "PAGE_OCR_CONFIG_DIR"
)

// ConfigFile represents the JSON configuration file structure
type ConfigFile struct {
	GhostscriptPath string `json:"ghostscript_path"`
	TessdataPath    string `json:"tessdata_path"`
	CredentialsFile string `json:"credentials_file"`
	OCRBackend      string `json:"ocr_backend"`
}

// GetConfigDir returns the user configuration directory (~/.page-ocr)
func GetConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return utils.ExpandPath(dir)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", utils.WrapError(err, utils.ErrorTypeIO, "failed to get user home directory")
	}
	return filepath.Join(homeDir, AppDirName), nil
}

// GetConfigFilePath returns the full path to the configuration file
func GetConfigFilePath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// LoadConfig loads configuration from file or creates default if not exists
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigFilePath()
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeIO, "failed to get config file path")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfigFile(configPath)
	}
	return loadConfigFromFile(configPath)
}

// createDefaultConfigFile creates a default configuration file with auto-detected tools
func createDefaultConfigFile(configPath string) (*Config, error) {
	if err := utils.EnsureDir(filepath.Dir(configPath)); err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeIO, "failed to create config directory")
	}

	configFile := &ConfigFile{OCRBackend: string(DefaultOCRBackend)}
	detectAndUpdateToolPaths(configFile)

	if err := saveConfigFile(configPath, configFile); err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeIO, "failed to save default config file")
	}

	fmt.Printf("✅ Created default configuration file: %s\n", configPath)
	if configFile.GhostscriptPath != "" || configFile.TessdataPath != "" {
		fmt.Printf("🔍 Auto-detected available tools\n")
	}

	return configFileToConfig(configFile), nil
}

// loadConfigFromFile loads configuration from an existing file
func loadConfigFromFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeIO, "failed to read config file")
	}

	var configFile ConfigFile
	if err := json.Unmarshal(data, &configFile); err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeConversion, "failed to parse config file")
	}

	return configFileToConfig(&configFile), nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config) error {
	configPath, err := GetConfigFilePath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(configPath)); err != nil {
		return utils.WrapError(err, utils.ErrorTypeIO, "failed to create config directory")
	}
	return saveConfigFile(configPath, configToConfigFile(config))
}

// saveConfigFile saves ConfigFile to disk
func saveConfigFile(configPath string, configFile *ConfigFile) error {
	data, err := json.MarshalIndent(configFile, "", "  ")
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeConversion, "failed to marshal config")
	}

	if err := os.WriteFile(configPath, data, constants.DefaultFilePermission); err != nil {
		return utils.WrapError(err, utils.ErrorTypeIO, "failed to write config file")
	}
	return nil
}

// detectAndUpdateToolPaths fills in Ghostscript and tessdata locations found on this machine
func detectAndUpdateToolPaths(configFile *ConfigFile) {
	platformConfig := constants.GetPlatformConfig()

	for _, candidate := range platformConfig.GhostscriptPaths {
		if path := resolveExecutable(candidate); path != "" {
			configFile.GhostscriptPath = utils.NormalizePath(path)
			break
		}
	}

	for _, dir := range platformConfig.TessdataPaths {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			configFile.TessdataPath = utils.NormalizePath(dir)
			break
		}
	}
}

// resolveExecutable looks a tool up in PATH or expands a wildcard install path
func resolveExecutable(pathOrName string) string {
	if !filepath.IsAbs(pathOrName) {
		if found, err := exec.LookPath(pathOrName); err == nil {
			return found
		}
		return ""
	}

	if strings.Contains(pathOrName, "*") {
		matches, err := filepath.Glob(pathOrName)
		if err != nil {
			return ""
		}
		for _, match := range matches {
			if utils.IsExecutable(match) {
				return match
			}
		}
		return ""
	}

	if utils.IsExecutable(pathOrName) {
		return pathOrName
	}
	return ""
}

// configFileToConfig converts ConfigFile to Config
func configFileToConfig(cf *ConfigFile) *Config {
	config := NewConfig()
	if cf.GhostscriptPath != "" {
		config.GhostscriptPath = cf.GhostscriptPath
	}
	config.TessdataPath = cf.TessdataPath
	config.CredentialsFile = cf.CredentialsFile
	if cf.OCRBackend != "" {
		config.OCRBackend = types.OCRBackend(cf.OCRBackend)
	}
	return config
}

// configToConfigFile converts Config to ConfigFile
func configToConfigFile(c *Config) *ConfigFile {
	return &ConfigFile{
		GhostscriptPath: c.GhostscriptPath,
		TessdataPath:    c.TessdataPath,
		CredentialsFile: c.CredentialsFile,
		OCRBackend:      string(c.OCRBackend),
	}
}

// GetConfigValue gets a specific configuration value by key
func GetConfigValue(key string) (string, error) {
	config, err := LoadConfig()
	if err != nil {
		return "", err
	}

	switch key {
	case "ghostscript_path":
		return config.GhostscriptPath, nil
	case "tessdata_path":
		return config.TessdataPath, nil
	case "credentials_file":
		return config.CredentialsFile, nil
	case "ocr_backend":
		return string(config.OCRBackend), nil
	default:
		return "", utils.NewValidationError(fmt.Sprintf("unknown config key: %s", key), nil)
	}
}

// SetConfigValue sets a specific configuration value by key
func SetConfigValue(key, value string) error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}

	switch key {
	case "ghostscript_path":
		config.GhostscriptPath = value
	case "tessdata_path":
		config.TessdataPath = value
	case "credentials_file":
		config.CredentialsFile = value
	case "ocr_backend":
		config.OCRBackend = types.OCRBackend(strings.ToLower(value))
		if err := NewConfigValidator().validateBackend(config); err != nil {
			return utils.NewValidationError(err.Error(), nil)
		}
	default:
		return utils.NewValidationError(fmt.Sprintf("unknown config key: %s", key), nil)
	}

	return SaveConfig(config)
}

// ListConfigKeys returns all available configuration keys
func ListConfigKeys() []string {
	return []string{
		"ghostscript_path",
		"tessdata_path",
		"credentials_file",
		"ocr_backend",
	}
}
