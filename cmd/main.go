// Command keyemu is a cross-platform keyboard input emulator. It types text
// and taps key combinations locally, runs as a daemon exposing an HTTP/
// WebSocket/UDP API, or drives a remote daemon over the network.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"keyemu/internal/api"
	"keyemu/internal/autostart"
	"keyemu/internal/config"
	"keyemu/internal/emulator"
	"keyemu/internal/inject"
	"keyemu/internal/network"
	"keyemu/internal/textutil"
	"keyemu/internal/timing"
	"keyemu/internal/tray"
	"keyemu/internal/vk"
)

const version = "1.0.0"

func main() {
	log.SetFlags(log.LstdFlags)

	// Optional .env overrides (KEYEMU_API_TOKEN, KEYEMU_API_PORT)
	godotenv.Load()

	var (
		typeText  = flag.String("type", "", "Type the given text")
		delayMS   = flag.Int("delay", 0, "Inter-character delay in milliseconds")
		wpm       = flag.Int("wpm", 0, "Humanize typing at the given words per minute")
		skip      = flag.Bool("skip-unsupported", false, "Skip unmappable characters instead of aborting")
		tapChord  = flag.String("tap", "", "Tap a key combination, e.g. \"Ctrl+Shift+A\"")
		pressKey  = flag.String("press", "", "Press (and hold) a key by name, e.g. \"Enter\"")
		release   = flag.String("release", "", "Release a previously pressed key by name")
		validate  = flag.String("validate", "", "Check whether the given text is typeable")
		estimate  = flag.String("estimate", "", "Estimate how long typing the given text takes")
		listKeys  = flag.Bool("list-keys", false, "List all known key names")
		serve     = flag.Bool("serve", false, "Run as a daemon with the remote typing API")
		remote    = flag.String("remote", "", "Send commands to a remote daemon at host:port")
		status    = flag.Bool("status", false, "With -remote: print the daemon state")
		discover  = flag.Bool("discover", false, "Scan the local network for running daemons")
		onBoot    = flag.String("autostart", "", "Enable or disable start on login (on/off)")
		noTray    = flag.Bool("no-tray", false, "Run the daemon without a system tray icon")
		showVer   = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Printf("keyemu %s\n", version)
		return
	}

	configMgr, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to create config manager: %v", err)
	}
	if err := configMgr.Load(); err != nil {
		log.Printf("Failed to load config, using defaults: %v", err)
	}
	applyEnvOverrides(configMgr)

	switch {
	case *listKeys:
		names := vk.Names()
		sort.Strings(names)
		for _, name := range names {
			fmt.Println(name)
		}

	case *validate != "":
		runValidate(*validate)

	case *estimate != "":
		runEstimate(configMgr, *estimate, *delayMS, *wpm)

	case *onBoot != "":
		runAutostart(*onBoot)

	case *discover:
		runDiscover(configMgr.Get().Server.Port)

	case *remote != "":
		runRemote(configMgr, *remote, remoteRequest{
			text:    *typeText,
			chord:   *tapChord,
			press:   *pressKey,
			release: *release,
			delayMS: *delayMS,
			wpm:     *wpm,
			skip:    *skip,
			status:  *status,
		})

	case *serve:
		runDaemon(configMgr, *noTray)

	case *typeText != "" || *tapChord != "" || *pressKey != "" || *release != "":
		runLocal(configMgr, *typeText, *tapChord, *pressKey, *release, *delayMS, *wpm, *skip)

	default:
		flag.Usage()
		os.Exit(2)
	}
}

// applyEnvOverrides lets environment variables (or a .env file) override the
// stored configuration without editing it.
func applyEnvOverrides(configMgr *config.Manager) {
	cfg := configMgr.Get()
	changed := false
	if token := os.Getenv("KEYEMU_API_TOKEN"); token != "" {
		cfg.Server.Token = token
		changed = true
	}
	if portStr := os.Getenv("KEYEMU_API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Server.Port = port
			changed = true
		} else {
			log.Printf("Ignoring invalid KEYEMU_API_PORT %q", portStr)
		}
	}
	if changed {
		configMgr.Set(cfg)
	}
}

// newEmulator builds the local emulator with the platform injector.
func newEmulator() *emulator.Emulator {
	injector, err := inject.NewInjector()
	if err != nil {
		log.Fatalf("Failed to initialize input injection: %v", err)
	}
	return emulator.New(injector)
}

// typeOptions builds options from the command line flags and config defaults.
func typeOptions(configMgr *config.Manager, delayMS, wpm int, skip bool) emulator.TypeOptions {
	cfg := configMgr.Get()

	opts := emulator.TypeOptions{
		Delay:           time.Duration(cfg.Typing.DefaultDelayMS) * time.Millisecond,
		SkipUnsupported: cfg.Typing.SkipUnsupported || skip,
	}
	if delayMS > 0 {
		opts.Delay = time.Duration(delayMS) * time.Millisecond
	}

	if wpm == 0 {
		wpm = cfg.Typing.DefaultWPM
	}
	if wpm > 0 {
		profile, err := timing.NewProfile(wpm)
		if err != nil {
			log.Fatalf("Invalid WPM: %v", err)
		}
		opts.Profile = profile
	}
	return opts
}

// runLocal executes one-shot key operations on this machine.
func runLocal(configMgr *config.Manager, text, chord, press, release string, delayMS, wpm int, skip bool) {
	emu := newEmulator()

	if press != "" {
		code, ok := vk.FromName(press)
		if !ok {
			log.Fatalf("Unknown key %q", press)
		}
		if err := emu.Press(code); err != nil {
			log.Fatalf("Press failed: %v", err)
		}
		fmt.Printf("Pressed %s\n", code)
	}

	if text != "" {
		opts := typeOptions(configMgr, delayMS, wpm, skip)
		if err := emu.TypeString(context.Background(), text, opts); err != nil {
			log.Fatalf("Typing failed: %v", err)
		}
	}

	if chord != "" {
		modifiers, key, err := vk.ParseChord(chord)
		if err != nil {
			log.Fatalf("Invalid chord %q: %v", chord, err)
		}
		if err := emu.Tap(key, modifiers...); err != nil {
			log.Fatalf("Tap failed: %v", err)
		}
		fmt.Printf("Tapped %s\n", chord)
	}

	if release != "" {
		code, ok := vk.FromName(release)
		if !ok {
			log.Fatalf("Unknown key %q", release)
		}
		if err := emu.Release(code); err != nil {
			log.Fatalf("Release failed: %v", err)
		}
		fmt.Printf("Released %s\n", code)
	}
}

// runValidate reports which characters of the text cannot be typed.
func runValidate(text string) {
	valid, unsupported := textutil.ValidateText(text)
	if valid {
		fmt.Println("All characters are typeable")
		return
	}

	fmt.Printf("Unsupported characters (%d):\n", len(unsupported))
	for _, r := range unsupported {
		fmt.Printf("  %q (U+%04X)\n", r, r)
	}
	for _, seg := range textutil.SplitBySupport(text) {
		state := "ok"
		if !seg.Supported {
			state = "unsupported"
		}
		fmt.Printf("  [%s] %q\n", state, seg.Text)
	}
	os.Exit(1)
}

// runEstimate prints the estimated typing duration for the text.
func runEstimate(configMgr *config.Manager, text string, delayMS, wpm int) {
	if wpm > 0 {
		profile, err := timing.NewProfile(wpm)
		if err != nil {
			log.Fatalf("Invalid WPM: %v", err)
		}
		fmt.Printf("Estimated typing time at %d WPM: %s\n", wpm, profile.EstimateTypingTime(text).Round(time.Millisecond))
		return
	}

	delay := time.Duration(configMgr.Get().Typing.DefaultDelayMS) * time.Millisecond
	if delayMS > 0 {
		delay = time.Duration(delayMS) * time.Millisecond
	}
	estimate, err := timing.CalculateTypingTime(text, delay)
	if err != nil {
		log.Fatalf("Estimate failed: %v", err)
	}
	fmt.Printf("Estimated typing time at %s/char: %s\n", delay, estimate.Round(time.Millisecond))
}

func runAutostart(mode string) {
	switch mode {
	case "on":
		if err := autostart.Enable(); err != nil {
			log.Fatalf("Failed to enable autostart: %v", err)
		}
		fmt.Println("Autostart enabled")
	case "off":
		if err := autostart.Disable(); err != nil {
			log.Fatalf("Failed to disable autostart: %v", err)
		}
		fmt.Println("Autostart disabled")
	default:
		log.Fatalf("Invalid -autostart value %q (want on or off)", mode)
	}
}

// runDiscover scans the LAN for daemons answering on the API port.
func runDiscover(port int) {
	fmt.Printf("Scanning local network for daemons on port %d...\n", port)
	hosts, err := network.ScanLAN(port)
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}
	if len(hosts) == 0 {
		fmt.Println("No daemons found")
		return
	}
	for _, h := range hosts {
		state := "active"
		if h.Paused {
			state = "paused"
		}
		fmt.Printf("  %s:%d  %s (%s)\n", h.IP, h.Port, h.Platform, state)
	}
}

// remoteRequest carries the command-line operations aimed at a remote daemon.
type remoteRequest struct {
	text    string
	chord   string
	press   string
	release string
	delayMS int
	wpm     int
	skip    bool
	status  bool
}

// runRemote drives a remote daemon: typing and taps over WebSocket, raw key
// events over the low-latency UDP stream when it is open (WebSocket as the
// fallback).
func runRemote(configMgr *config.Manager, addr string, req remoteRequest) {
	if req.text == "" && req.chord == "" && req.press == "" && req.release == "" && !req.status {
		log.Fatalf("-remote requires -type, -tap, -press, -release, or -status")
	}

	token := configMgr.Get().Server.Token

	if req.press != "" || req.release != "" {
		sendRemoteKeys(addr, token, req.press, req.release)
	}

	if req.text == "" && req.chord == "" && !req.status {
		return
	}

	client, err := network.Dial(addr, token, "keyemu-cli", version)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	if req.text != "" {
		if err := client.TypeText(req.text, req.delayMS, req.wpm, req.skip); err != nil {
			log.Fatalf("Remote typing failed: %v", err)
		}
		fmt.Printf("Typed %d characters on %s\n", len([]rune(req.text)), addr)
	}
	if req.chord != "" {
		if err := client.Tap(req.chord); err != nil {
			log.Fatalf("Remote tap failed: %v", err)
		}
		fmt.Printf("Tapped %s on %s\n", req.chord, addr)
	}
	if req.status {
		st, err := client.Status()
		if err != nil {
			log.Fatalf("Failed to fetch status: %v", err)
		}
		fmt.Printf("Platform:  %s\n", st.Platform)
		fmt.Printf("Paused:    %v\n", st.Paused)
		fmt.Printf("Held keys: %s\n", strings.Join(st.HeldKeys, " "))
	}
}

// sendRemoteKeys streams raw press/release events to the daemon. The UDP
// path is probed first; when blocked, the events go over WebSocket instead.
func sendRemoteKeys(addr, token, press, release string) {
	type keyEvent struct {
		code    vk.Code
		pressed bool
	}
	var events []keyEvent
	for _, req := range []struct {
		name    string
		pressed bool
	}{{press, true}, {release, false}} {
		if req.name == "" {
			continue
		}
		code, ok := vk.FromName(req.name)
		if !ok {
			log.Fatalf("Unknown key %q", req.name)
		}
		events = append(events, keyEvent{code, req.pressed})
	}

	sender := network.NewUDPSender(addr)
	if sender.Probe() {
		if err := sender.Start(); err != nil {
			log.Fatalf("UDP sender failed to start: %v", err)
		}
		defer sender.Stop()
		for _, ev := range events {
			if err := sender.SendKey(ev.code, ev.pressed); err != nil {
				log.Fatalf("UDP key event failed: %v", err)
			}
			fmt.Printf("Sent %s pressed=%v to %s over UDP\n", ev.code, ev.pressed, addr)
		}
		return
	}

	log.Printf("UDP path to %s is blocked, falling back to WebSocket", addr)
	client, err := network.Dial(addr, token, "keyemu-cli", version)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()
	for _, ev := range events {
		if err := client.Key(ev.code, ev.pressed); err != nil {
			log.Fatalf("Key event failed: %v", err)
		}
		fmt.Printf("Sent %s pressed=%v to %s\n", ev.code, ev.pressed, addr)
	}
}

// runDaemon starts the API server, the UDP key stream, and the tray icon.
func runDaemon(configMgr *config.Manager, noTray bool) {
	cfg := configMgr.Get()
	emu := newEmulator()
	server := api.NewServer(configMgr, emu)

	go func() {
		if err := server.Start(cfg.Server.Port); err != nil {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	var udpReceiver *network.UDPReceiver
	if cfg.Server.UDPEnabled {
		udpReceiver = network.NewUDPReceiver(cfg.Server.Port)
		udpReceiver.OnKey = func(code vk.Code, pressed bool, timestamp int64) {
			if server.Paused() {
				return
			}
			var err error
			if pressed {
				err = emu.Press(code)
			} else {
				err = emu.Release(code)
			}
			if err != nil {
				log.Printf("UDP key %s failed: %v", code, err)
			}
		}
		if err := udpReceiver.Start(); err != nil {
			log.Printf("UDP receiver failed to start: %v", err)
			udpReceiver = nil
		}
	}

	stop := func() {
		if udpReceiver != nil {
			udpReceiver.Stop()
		}
		log.Printf("Daemon stopped")
		os.Exit(0)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	if noTray || !cfg.General.ShowTray {
		log.Printf("Daemon running (no tray), press Ctrl+C to stop")
		<-sigCh
		stop()
		return
	}

	menu := tray.New("KeyEmu - remote typing daemon")
	menu.OnPause = func(paused bool) { server.SetPaused(paused) }

	go func() {
		<-sigCh
		menu.Stop()
	}()

	// Blocks until Quit; systray requires the main goroutine
	menu.Run()
	stop()
}
