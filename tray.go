//go:build windows

package main

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/energye/systray"
	"github.com/rs/zerolog"

	"github.com/winddc/winddc/icon"
	"github.com/winddc/winddc/internal/config"
	"github.com/winddc/winddc/internal/errors"
	"github.com/winddc/winddc/internal/hotkey"
	"github.com/winddc/winddc/internal/logger"
	"github.com/winddc/winddc/internal/monitor"
	"github.com/winddc/winddc/internal/platform"
)

// maxStatusLines is how many monitors get their own menu caption.
const maxStatusLines = 6

// tray owns the menu. Menu state is only touched from the ui goroutine;
// everything else posts closures to it.
type tray struct {
	loader  *config.Loader
	logPath string
	log     zerolog.Logger

	reg *monitor.Registry
	ui  chan func()

	cfgMu sync.Mutex
	cfg   *config.Config

	stop      context.CancelFunc
	refresher *refresher
	renderDue atomic.Bool

	status    []*systray.MenuItem
	presets   map[int]*systray.MenuItem
	extended  *systray.MenuItem
	autostart *systray.MenuItem
	runEntry  *runKeyEntry
	unbind    []func()
}

func newTray(loader *config.Loader, cfg *config.Config, logPath string) *tray {
	t := &tray{
		loader:  loader,
		cfg:     cfg,
		logPath: logPath,
		log:     logger.With("tray"),
		ui:      make(chan func(), 64),
		presets: make(map[int]*systray.MenuItem),
	}
	t.reg = platform.NewRegistry(cfg, monitor.WithDispatcher(t.post))
	t.refresher = &refresher{
		reg:     t.reg,
		timeout: func() time.Duration { return t.config().Detect.Timeout },
	}
	return t
}

// post queues fn on the ui goroutine.
func (t *tray) post(fn func()) { t.ui <- fn }

func (t *tray) config() *config.Config {
	t.cfgMu.Lock()
	defer t.cfgMu.Unlock()
	return t.cfg
}

func (t *tray) onReady() {
	ctx, cancel := context.WithCancel(context.Background())
	t.stop = cancel

	systray.SetIcon(icon.Generate(icon.Unknown))
	systray.SetTooltip(appName)
	t.buildMenu()

	go func() {
		for fn := range t.ui {
			fn()
		}
	}()

	t.reg.OnUpdate(func(ms []*monitor.Monitor) { t.rebind(ms) })
	go t.refresh(ctx, true)

	if t.config().Hotkeys.Enabled {
		go func() {
			if err := hotkey.Listen(ctx, hotkeyBindings(t.setAll, t.step)); err != nil {
				t.log.Warn().Err(err).Msg("some hotkeys are unavailable")
			}
		}()
	}

	t.loader.Watch(t.applyConfig)
}

func (t *tray) onExit() {
	if t.stop != nil {
		t.stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := t.reg.Wait(ctx); err != nil {
		t.log.Warn().Err(err).Msg("exiting with writes still pending")
	}
	t.reg.Close()
	t.log.Info().Msg("WinDDC stopped")
}

func (t *tray) buildMenu() {
	title := systray.AddMenuItem(appName+" "+displayVersion(), "")
	title.Disable()
	for range maxStatusLines {
		item := systray.AddMenuItem("", "")
		item.Disable()
		item.Hide()
		t.status = append(t.status, item)
	}
	systray.AddSeparator()

	for _, level := range presets {
		item := systray.AddMenuItem(fmt.Sprintf("%d%%", level), fmt.Sprintf("Set every monitor to %d%%", level))
		item.Click(func() { t.setAll(level) })
		t.presets[level] = item
	}
	systray.AddSeparator()

	systray.AddMenuItem("Brighter", "Raise brightness by one step").Click(func() { t.step(+1) })
	systray.AddMenuItem("Dimmer", "Lower brightness by one step").Click(func() { t.step(-1) })
	systray.AddSeparator()

	t.extended = systray.AddMenuItem("Allow extended range", "Let HDR displays go above the SDR slider maximum")
	if t.reg.AllowExtended() {
		t.extended.Check()
	}
	t.extended.Click(func() { t.setExtended(!t.extended.Checked()) })

	systray.AddMenuItem("Refresh monitors", "Detect monitors again").Click(func() {
		go t.refresh(context.Background(), false)
	})

	t.autostart = systray.AddMenuItem("Start with Windows", "Launch WinDDC at login")
	t.syncAutostart()
	t.autostart.Click(t.toggleAutostart)

	systray.AddMenuItem("Open log", "Open log file").Click(func() {
		exec.Command("rundll32", "url.dll,FileProtocolHandler", t.logPath).Start()
	})
	systray.AddSeparator()
	systray.AddMenuItem("Quit", "Quit WinDDC").Click(systray.Quit)

	systray.SetOnClick(t.showMenu)
	systray.SetOnRClick(t.showMenu)
}

// showMenu opens the menu and detects monitors again in the background.
// Fresh handles pick up sleep, wake and topology changes, and the new
// monitors read their brightness so changes made with the monitor's own
// buttons show up.
func (t *tray) showMenu(menu systray.IMenu) {
	go t.refresh(context.Background(), false)
	menu.ShowMenu()
}

// refresh runs one detection pass. On the first pass an empty result is
// fatal.
func (t *tray) refresh(ctx context.Context, first bool) {
	ran, err := t.refresher.run(ctx)
	switch {
	case !ran:
		return
	case err == nil:
	case errors.HasCode(err, errors.ErrNoMonitors) && first:
		fatalDialog(fmt.Errorf("no monitor supports brightness control over DDC/CI or HDR: %w", err))
		systray.Quit()
		return
	default:
		t.log.Warn().Err(err).Msg("refresh found nothing")
	}
	t.scheduleRender()
}

// rebind runs on the ui goroutine after the registry replaced its list.
func (t *tray) rebind(ms []*monitor.Monitor) {
	for _, u := range t.unbind {
		u()
	}
	t.unbind = t.unbind[:0]
	for _, m := range ms {
		t.unbind = append(t.unbind, m.OnChange(func(monitor.Change) { t.scheduleRender() }))
	}
	if len(ms) > maxStatusLines {
		t.log.Info().Int("monitors", len(ms)).Msg("more monitors than status lines")
	}
	t.render()
}

// scheduleRender queues at most one pending render.
func (t *tray) scheduleRender() {
	if t.renderDue.CompareAndSwap(false, true) {
		t.post(func() {
			t.renderDue.Store(false)
			t.render()
		})
	}
}

func (t *tray) render() {
	ms := t.reg.Monitors()
	for i, item := range t.status {
		if i < len(ms) {
			item.SetTitle(statusLine(ms[i]))
			item.Show()
		} else {
			item.Hide()
		}
	}

	level, same := t.reg.Combined()
	checked := 0
	if same {
		checked = nearestPreset(int(level))
	}
	for l, item := range t.presets {
		if l == checked {
			item.Check()
		} else {
			item.Uncheck()
		}
	}

	if same {
		systray.SetIcon(icon.Generate(int(level)))
	} else {
		systray.SetIcon(icon.Generate(icon.Unknown))
	}
	systray.SetTooltip(tooltip(level, same, len(ms)))
}

func (t *tray) setAll(level int) {
	t.log.Debug().Int("level", level).Msg("preset")
	t.reg.SetAll(uint16(level))
}

func (t *tray) step(dir int) {
	t.reg.StepAll(dir * t.config().Brightness.Step)
}

func (t *tray) setExtended(allow bool) {
	t.reg.SetAllowExtended(allow)
	t.post(func() {
		if allow {
			t.extended.Check()
		} else {
			t.extended.Uncheck()
		}
		t.render()
	})
}

// applyConfig picks up live-editable settings after the config file changes.
func (t *tray) applyConfig(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		t.log.Warn().Err(err).Msg("ignoring invalid config change")
		return
	}
	if level, err := logger.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}

	t.cfgMu.Lock()
	old := t.cfg
	t.cfg = cfg
	t.cfgMu.Unlock()

	if cfg.Brightness.AllowExtended != old.Brightness.AllowExtended {
		t.setExtended(cfg.Brightness.AllowExtended)
	}
	t.log.Info().Int("step", cfg.Brightness.Step).Msg("config reloaded")
}

// syncAutostart checks the menu item when the Run entry launches this
// executable. Without a usable entry the item is disabled.
func (t *tray) syncAutostart() {
	if t.runEntry == nil {
		entry, err := newAutostart()
		if err != nil {
			t.log.Error().Err(err).Msg("autostart unavailable")
			t.autostart.Disable()
			return
		}
		t.runEntry = entry
	}

	on, err := t.runEntry.Enabled()
	if err != nil {
		t.log.Warn().Err(err).Msg("read autostart entry")
	}
	if on {
		t.autostart.Check()
	} else {
		t.autostart.Uncheck()
	}
}

func (t *tray) toggleAutostart() {
	if t.runEntry == nil {
		return
	}
	want := !t.autostart.Checked()
	if err := t.runEntry.Set(want); err != nil {
		t.log.Error().Err(err).Bool("enable", want).Msg("update autostart")
	} else {
		t.log.Info().Bool("enable", want).Str("command", t.runEntry.command).Msg("autostart updated")
	}
	t.syncAutostart()
}
