//go:build windows

package main

import (
	"os"
	"path/filepath"

	"github.com/energye/systray"
	"github.com/ncruces/zenity"
	"golang.org/x/sys/windows"

	"github.com/winddc/winddc/internal/config"
	"github.com/winddc/winddc/internal/logger"
)

const appName = "WinDDC"

func main() {
	name, _ := windows.UTF16PtrFromString("WinDDCMutex")
	if _, err := windows.CreateMutex(nil, false, name); err == windows.ERROR_ALREADY_EXISTS {
		return
	}

	loader := config.New()
	cfg, err := loader.Load()
	if err != nil {
		fatalDialog(err)
		os.Exit(1)
	}

	logPath := cfg.Log.File
	if logPath == "" {
		logPath = filepath.Join(os.Getenv("LocalAppData"), appName, "log.txt")
	}
	closer, err := logger.Init(logger.Options{Level: cfg.Log.Level, File: logPath})
	if err != nil {
		fatalDialog(err)
		os.Exit(1)
	}
	defer closer.Close()

	logger.Info().
		Str("version", displayVersion()).
		Str("config", loader.FileUsed()).
		Msg("WinDDC starting")

	t := newTray(loader, cfg, logPath)
	systray.Run(t.onReady, t.onExit)
}

func fatalDialog(err error) {
	logger.Error().Err(err).Msg("fatal")
	zenity.Error(err.Error(), zenity.Title(appName), zenity.ErrorIcon)
}
