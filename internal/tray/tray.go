// Package tray provides the system tray menu for the air canvas.
package tray

import (
	"fmt"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/getlantern/systray"
)

// refreshInterval is how often the session count is re-read.
const refreshInterval = 2 * time.Second

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onOpen   func()
	onClear  func()
	onQuit   func()
	sessions func() int
	enabled  bool
	mu       sync.RWMutex

	menuToggle   *systray.MenuItem
	menuSessions *systray.MenuItem
	stop         chan struct{}
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
		stop:    make(chan struct{}),
	}
}

// OnToggle sets the callback run when gesture input is switched on or off.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback run by "Open Canvas".
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnClear sets the callback run by "Clear All Canvases".
func (t *Tray) OnClear(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClear = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// SessionCount sets the source of the "Sessions" menu line.
func (t *Tray) SessionCount(fn func() int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("AirCanvas")
	systray.SetTooltip("AirCanvas gesture drawing")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture input")
	systray.AddSeparator()
	t.menuSessions = systray.AddMenuItem(sessionsTitle(0), "Open drawing sessions")
	t.menuSessions.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Canvas...", "Open the canvas in a browser")
	menuClear := systray.AddMenuItem("Clear All Canvases", "Clear every open canvas")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit AirCanvas")

	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.call(func(t *Tray) func() { return t.onOpen })
			case <-menuClear.ClickedCh:
				t.call(func(t *Tray) func() { return t.onClear })
			case <-ticker.C:
				t.refresh()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			case <-t.stop:
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	select {
	case <-t.stop:
	default:
		close(t.stop)
	}
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func sessionsTitle(n int) string {
	if n == 1 {
		return "1 session"
	}
	return fmt.Sprintf("%d sessions", n)
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// call runs the callback selected by pick outside the lock.
func (t *Tray) call(pick func(*Tray) func()) {
	t.mu.RLock()
	callback := pick(t)
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// refresh re-reads the session count into the menu.
func (t *Tray) refresh() {
	t.mu.RLock()
	count, item := t.sessions, t.menuSessions
	t.mu.RUnlock()

	if count != nil && item != nil {
		item.SetTitle(sessionsTitle(count()))
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.call(func(t *Tray) func() { return t.onQuit })
	systray.Quit()
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// BrowserCommand returns the command that opens url in the desktop browser.
func BrowserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// OpenBrowser opens url without waiting for the browser to exit.
func OpenBrowser(url string) error {
	name, args := BrowserCommand(runtime.GOOS, url)
	return exec.Command(name, args...).Start()
}
