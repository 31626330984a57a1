// Package tray provides a system tray menu for mudra: gesture and voice toggles,
// the last executed command, and shortcuts to the host page and quit.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/control"
)

// Channel identifies a toggle in the menu.
type Channel string

const (
	Gestures Channel = "gestures"
	Voice    Channel = "voice"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(ch Channel, enabled bool)
	onOpen   func()
	onQuit   func()
	enabled  map[Channel]bool
	last     string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuGestures    *systray.MenuItem
	menuVoice       *systray.MenuItem
	menuLastCommand *systray.MenuItem
}

// New creates a new Tray with both channels enabled.
func New() *Tray {
	return &Tray{
		enabled: map[Channel]bool{Gestures: true, Voice: true},
	}
}

// OnToggle sets the callback called when a channel is switched from the menu.
func (t *Tray) OnToggle(fn func(ch Channel, enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback called when the open page item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops a running tray.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra gesture and voice media control")

	t.mu.Lock()
	t.menuGestures = systray.AddMenuItem(toggleTitle(Gestures, t.enabled[Gestures]), "Toggle hand gestures")
	t.menuVoice = systray.AddMenuItem(toggleTitle(Voice, t.enabled[Voice]), "Toggle voice commands")
	systray.AddSeparator()
	t.menuLastCommand = systray.AddMenuItem(lastTitle(t.last), "Last executed command")
	t.menuLastCommand.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Player...", "Open the player page in the browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuGestures.ClickedCh:
				t.toggle(Gestures)
			case <-t.menuVoice.ClickedCh:
				t.toggle(Voice)
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func toggleTitle(ch Channel, enabled bool) string {
	name := "Gestures"
	if ch == Voice {
		name = "Voice"
	}
	if enabled {
		return "● " + name
	}
	return "○ " + name
}

func lastTitle(last string) string {
	if last == "" {
		return "Last: none"
	}
	return "Last: " + last
}

func (t *Tray) item(ch Channel) *systray.MenuItem {
	if ch == Voice {
		return t.menuVoice
	}
	return t.menuGestures
}

// toggle flips ch and reports the new state to the callback.
func (t *Tray) toggle(ch Channel) {
	t.mu.Lock()
	enabled := !t.enabled[ch]
	t.enabled[ch] = enabled
	if item := t.item(ch); item != nil {
		item.SetTitle(toggleTitle(ch, enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(ch, enabled)
	}
}

// SetEnabled mirrors a channel state changed elsewhere, without calling back.
func (t *Tray) SetEnabled(ch Channel, enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled[ch] = enabled
	if item := t.item(ch); item != nil {
		item.SetTitle(toggleTitle(ch, enabled))
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Record shows successfully executed commands as the last command.
func (t *Tray) Record(r control.Record) {
	if r.Outcome != control.OutcomeSucceeded {
		return
	}
	t.SetLastCommand(fmt.Sprintf("%s (%s)", r.Action, r.Channel))
}

// SetLastCommand updates the last command display in the menu.
func (t *Tray) SetLastCommand(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = name
	if t.menuLastCommand != nil {
		t.menuLastCommand.SetTitle(lastTitle(name))
	}
}

// LastCommand returns the text shown as the last command.
func (t *Tray) LastCommand() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// IsEnabled returns the current state of ch.
func (t *Tray) IsEnabled(ch Channel) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled[ch]
}
