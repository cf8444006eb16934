package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
	OSAndroid = "android"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Command constants
const (
	OpenCommand     = "open"
	ExplorerCommand = "explorer"
	XDGOpenCommand  = "xdg-open"
	AndroidCommand  = "am"
)

// Command parameters
const (
	MacOSSelectFlag    = "-R"
	WindowsSelectParam = "/select,"
)

// AndroidDownloadsDir is where files land so they show up in the gallery.
const AndroidDownloadsDir = "/sdcard/Download"

// LinuxFileManagers are tried in order when xdg-open is unavailable.
var LinuxFileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}

var (
	ErrEmptyPath       = errors.New("file path is empty")
	ErrNoFileManager   = errors.New("no suitable file manager found")
	ErrUnsupportedOS   = errors.New("unsupported operating system")
	ErrPathNotExisting = errors.New("path does not exist")
)

// runCommand is replaced in tests.
var runCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

var lookPath = exec.LookPath

// RevealFile opens the system file manager with the finished download
// selected. On platforms without selection support the parent directory
// is opened instead.
func RevealFile(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("%w: %s", ErrPathNotExisting, abs)
	}
	return revealFor(runtime.GOOS, abs)
}

func revealFor(goos, abs string) error {
	dir := filepath.Dir(abs)
	switch goos {
	case OSDarwin:
		return runCommand(OpenCommand, MacOSSelectFlag, abs)
	case OSWindows:
		return runCommand(ExplorerCommand, WindowsSelectParam+abs)
	case OSLinux:
		if err := runCommand(XDGOpenCommand, dir); err == nil {
			return nil
		}
		for _, fm := range LinuxFileManagers {
			if _, err := lookPath(fm); err == nil {
				return runCommand(fm, dir)
			}
		}
		return ErrNoFileManager
	case OSAndroid:
		return runCommand(AndroidCommand, "start", "-a", "android.intent.action.VIEW", "-d", "file://"+dir)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOS, goos)
	}
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// IsAndroid reports whether the process runs inside a fyne Android package.
func IsAndroid() bool {
	return runtime.GOOS == OSAndroid ||
		os.Getenv("ANDROID_DATA") != "" ||
		os.Getenv("ANDROID_ROOT") != "" ||
		filepath.Base(os.Args[0]) == "libdist.so"
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	if IsAndroid() {
		return AndroidDownloadsDir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, "Downloads"), nil
}
