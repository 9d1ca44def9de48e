//go:build windows

package hotkey

import (
	"context"
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/winddc/winddc/internal/logger"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procRegisterHotKey     = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey   = user32.NewProc("UnregisterHotKey")
	procGetMessageW        = user32.NewProc("GetMessageW")
	procPeekMessageW       = user32.NewProc("PeekMessageW")
	procPostThreadMessageW = user32.NewProc("PostThreadMessageW")
)

const (
	wmQuit     = 0x0012
	wmHotkey   = 0x0312
	pmNoRemove = 0x0000
)

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      [2]int32
}

// Listen registers every binding and runs its Action on this goroutine's
// locked OS thread whenever the hotkey fires, including auto-repeats while it
// is held unless the binding carries ModNoRepeat. It blocks until ctx is done.
// A binding that fails to register (usually because another program owns
// the combination) is logged and skipped; the first such error is returned
// when Listen exits.
func Listen(ctx context.Context, bindings []Binding) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	log := logger.With("hotkey")

	// Make sure the thread has a message queue before anyone posts to it.
	var m msg
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmNoRemove)

	var firstErr error
	registered := make([]bool, len(bindings))
	for i, b := range bindings {
		ret, _, err := procRegisterHotKey.Call(0, uintptr(i+1), uintptr(b.Mods), uintptr(b.Key))
		if ret == 0 {
			err = fmt.Errorf("RegisterHotKey(%s): %w", b, err)
			log.Warn().Err(err).Msg("hotkey unavailable")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		registered[i] = true
	}
	log.Info().Int("hotkeys", len(bindings)).Msg("hotkeys registered")

	tid := windows.GetCurrentThreadId()
	stop := context.AfterFunc(ctx, func() {
		procPostThreadMessageW.Call(uintptr(tid), wmQuit, 0, 0)
	})
	defer stop()

	for {
		// 0 on WM_QUIT, -1 on error.
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(ret) <= 0 {
			break
		}
		if m.message != wmHotkey {
			continue
		}
		if id := int(m.wParam) - 1; id >= 0 && id < len(bindings) {
			log.Debug().Str("hotkey", bindings[id].String()).Msg("pressed")
			bindings[id].Action()
		}
	}

	for i, ok := range registered {
		if ok {
			procUnregisterHotKey.Call(0, uintptr(i+1))
		}
	}
	return firstErr
}
