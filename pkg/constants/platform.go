package constants

import (
	"runtime"
)

// PlatformConfig lists where external tools are usually installed
type PlatformConfig struct {
	GhostscriptPaths []string
	TessdataPaths    []string
	TempDirPrefix    string
}

// GetPlatformConfig returns platform-specific configuration
func GetPlatformConfig() *PlatformConfig {
	switch runtime.GOOS {
	case "windows":
		return &PlatformConfig{
			GhostscriptPaths: []string{
				"gswin64c.exe",
				"gswin32c.exe",
				"gs.exe",
				"C:\\Program Files\\gs\\gs*\\bin\\gswin64c.exe",
				"C:\\Program Files (x86)\\gs\\gs*\\bin\\gswin32c.exe",
			},
			TessdataPaths: []string{
				"C:\\Program Files\\Tesseract-OCR\\tessdata",
			},
			TempDirPrefix: "page-ocr-",
		}
	case "darwin":
		return &PlatformConfig{
			GhostscriptPaths: []string{
				"gs",
				"/opt/homebrew/bin/gs",
				"/usr/local/bin/gs",
			},
			TessdataPaths: []string{
				"/opt/homebrew/share/tessdata",
				"/usr/local/share/tessdata",
			},
			TempDirPrefix: "page-ocr-",
		}
	default:
		return &PlatformConfig{
			GhostscriptPaths: []string{
				"gs",
				"/usr/bin/gs",
				"/usr/local/bin/gs",
			},
			TessdataPaths: []string{
				"/usr/share/tesseract-ocr/5/tessdata",
				"/usr/share/tesseract-ocr/4.00/tessdata",
				"/usr/share/tessdata",
			},
			TempDirPrefix: "page-ocr-",
		}
	}
}

// IsWindows returns true if running on Windows
func IsWindows() bool {
	return runtime.GOOS == "windows"
}
