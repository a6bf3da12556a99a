package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nodewee/page-ocr/pkg/config"
	"github.com/nodewee/page-ocr/pkg/constants"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tool path and backend configuration",
	Long: `Manage persisted configuration settings.

Configuration is stored in a JSON file in your user configuration directory (~/.page-ocr/config.json).
Ghostscript and tessdata locations are detected automatically the first time it is created.

Available commands:
  list  - List all configured values
  get   - Get a specific value
  set   - Set a specific value

Examples:
  page-ocr config list                                       # List all values
  page-ocr config get ghostscript_path                       # Get Ghostscript path
  page-ocr config set ghostscript_path /usr/local/bin/gs     # Set Ghostscript path
  page-ocr config set credentials_file ~/keys/vision.json    # Set Vision credentials
  page-ocr config set ocr_backend tesseract                  # Change default backend`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "list":
			listConfig()
		case "get":
			if len(args) < 2 {
				fmt.Println("Error: 'get' command requires a key name")
				fmt.Printf("Usage: %s config get <key>\n", constants.AppName)
				return
			}
			getConfig(args[1])
		case "set":
			if len(args) < 3 {
				fmt.Println("Error: 'set' command requires a key and value")
				fmt.Printf("Usage: %s config set <key> <value>\n", constants.AppName)
				return
			}
			setConfig(args[1], args[2])
		default:
			fmt.Printf("Error: Unknown config command '%s'\n", args[0])
			fmt.Println("Available commands: list, get, set")
		}
	},
}

// listConfig lists all persisted configuration settings
func listConfig() {
	fmt.Println("🛠️  Configuration")
	fmt.Println("=================")

	configPath, err := config.GetConfigFilePath()
	if err != nil {
		fmt.Printf("❌ Error locating configuration: %v\n", err)
		return
	}
	fmt.Printf("📁 Config file: %s\n\n", configPath)

	for _, key := range config.ListConfigKeys() {
		value, err := config.GetConfigValue(key)
		if err != nil {
			fmt.Printf("❌ Error loading configuration: %v\n", err)
			return
		}
		fmt.Printf("  %-18s = %s\n", key, getDisplayValue(value))
	}

	fmt.Printf("\n💡 Tip: Use '%s config set <key> <value>' to change a value\n", constants.AppName)
	fmt.Println("💡 Note: Other settings (concurrency, DPI, timeouts, etc.) come from flags or PAGE_OCR_* variables")
}

// getConfig gets a specific configuration value
func getConfig(key string) {
	value, err := config.GetConfigValue(key)
	if err != nil {
		fmt.Printf("❌ Error getting config value '%s': %v\n", key, err)
		return
	}

	fmt.Printf("📝 %s = %s\n", key, getDisplayValue(value))
}

// setConfig sets a specific configuration value
func setConfig(key, value string) {
	if err := config.SetConfigValue(key, value); err != nil {
		fmt.Printf("❌ Error setting config value '%s': %v\n", key, err)
		return
	}

	fmt.Printf("✅ Successfully set %s = %s\n", key, value)
}

// getDisplayValue returns a display-friendly value for empty strings
func getDisplayValue(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

// configListCmd represents the 'config list' command
var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration values",
	Run: func(cmd *cobra.Command, args []string) {
		listConfig()
	},
}

// configGetCmd represents the 'config get' command
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		getConfig(args[0])
	},
}

// configSetCmd represents the 'config set' command
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a specific configuration value",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setConfig(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
