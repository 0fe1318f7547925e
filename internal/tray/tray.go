// Package tray shows the daemon's system tray icon and menu.
package tray

import (
	"encoding/binary"

	"github.com/getlantern/systray"
)

// DaemonMenu is the tray menu of a running daemon: a status line, a pause
// toggle for the injection gate, and quit.
type DaemonMenu struct {
	tooltip string

	statusItem *systray.MenuItem
	pauseItem  *systray.MenuItem

	// OnPause is called with the new pause state when the toggle is clicked.
	OnPause func(paused bool)

	// OnQuit is called once after the tray loop exits.
	OnQuit func()

	paused bool
	quitCh chan struct{}
}

// New creates the daemon menu. Run must be called from the main goroutine.
func New(tooltip string) *DaemonMenu {
	return &DaemonMenu{
		tooltip: tooltip,
		quitCh:  make(chan struct{}),
	}
}

// Run starts the tray event loop and blocks until Quit is clicked or Stop
// is called.
func (m *DaemonMenu) Run() {
	systray.Run(m.onReady, m.onExit)
}

// Stop ends the tray event loop.
func (m *DaemonMenu) Stop() {
	systray.Quit()
}

// SetPaused updates the toggle checkmark and the status line. Safe to call
// before Run; the state is applied when the menu is built.
func (m *DaemonMenu) SetPaused(paused bool) {
	m.paused = paused
	if m.pauseItem == nil {
		return
	}
	if paused {
		m.pauseItem.Check()
		m.statusItem.SetTitle("Status: paused")
	} else {
		m.pauseItem.Uncheck()
		m.statusItem.SetTitle("Status: active")
	}
}

func (m *DaemonMenu) onReady() {
	systray.SetTitle("KeyEmu")
	systray.SetTooltip(m.tooltip)
	systray.SetIcon(trayIcon())

	m.statusItem = systray.AddMenuItem("Status: active", "")
	m.statusItem.Disable()
	m.pauseItem = systray.AddMenuItem("Pause injection", "Reject typing requests until resumed")
	systray.AddSeparator()
	quitItem := systray.AddMenuItem("Quit", "Stop the daemon")

	m.SetPaused(m.paused)

	go func() {
		for {
			select {
			case <-m.pauseItem.ClickedCh:
				m.SetPaused(!m.paused)
				if m.OnPause != nil {
					m.OnPause(m.paused)
				}
			case <-quitItem.ClickedCh:
				systray.Quit()
				return
			case <-m.quitCh:
				return
			}
		}
	}()
}

func (m *DaemonMenu) onExit() {
	close(m.quitCh)
	if m.OnQuit != nil {
		m.OnQuit()
	}
}

// trayIcon builds the 16x16 ICO bytes systray expects on Windows. All pixel
// and mask bytes stay zero, which renders fully transparent and keeps the
// binary free of embedded assets.
func trayIcon() []byte {
	const (
		side      = 16
		pixelData = side * side * 4 // 32-bit BGRA rows
		maskData  = side * 4       // 1-bit AND mask, rows padded to 32 bits
		imageSize = 40 + pixelData + maskData
	)

	buf := make([]byte, 22+imageSize)
	le := binary.LittleEndian

	// ICONDIR: resource type 1 (icon), one image.
	le.PutUint16(buf[2:], 1)
	le.PutUint16(buf[4:], 1)

	// ICONDIRENTRY.
	buf[6] = side
	buf[7] = side
	le.PutUint16(buf[10:], 1)  // planes
	le.PutUint16(buf[12:], 32) // bits per pixel
	le.PutUint32(buf[14:], imageSize)
	le.PutUint32(buf[18:], 22) // image data follows the directory

	// BITMAPINFOHEADER. Height counts the pixel rows plus the AND mask rows.
	le.PutUint32(buf[22:], 40)
	le.PutUint32(buf[26:], side)
	le.PutUint32(buf[30:], side*2)
	le.PutUint16(buf[34:], 1)
	le.PutUint16(buf[36:], 32)
	le.PutUint32(buf[42:], pixelData+maskData)

	return buf
}
