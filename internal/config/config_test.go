package config

import "testing"

func setTestHome(t *testing.T) {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("APPDATA", tmp)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Server.Enabled {
		t.Error("server disabled by default")
	}
	if cfg.Server.Port != 18181 {
		t.Errorf("default port = %d, want 18181", cfg.Server.Port)
	}
	if !cfg.Server.UDPEnabled {
		t.Error("UDP disabled by default")
	}
	if cfg.Typing.DefaultDelayMS != 50 {
		t.Errorf("default delay = %d, want 50", cfg.Typing.DefaultDelayMS)
	}
	if cfg.Typing.SkipUnsupported {
		t.Error("skip_unsupported enabled by default")
	}
	if !cfg.General.ShowTray {
		t.Error("tray hidden by default")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	setTestHome(t)

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Load with no file: %v", err)
	}
	if m.Get().Server.Port != 18181 {
		t.Errorf("port = %d after loading missing file, want default", m.Get().Server.Port)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	setTestHome(t)

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Server.Port = 28282
	cfg.Server.Token = "secret"
	cfg.Typing.DefaultWPM = 80
	m.Set(cfg)
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A fresh manager reads the same file back.
	m2, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := m2.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := m2.Get()
	if got.Server.Port != 28282 {
		t.Errorf("port = %d, want 28282", got.Server.Port)
	}
	if got.Server.Token != "secret" {
		t.Errorf("token = %q, want secret", got.Server.Token)
	}
	if got.Typing.DefaultWPM != 80 {
		t.Errorf("wpm = %d, want 80", got.Typing.DefaultWPM)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	setTestHome(t)

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := m.Get()
	cfg.Server.Port = 9
	cfg.Server.Token = "leaked"

	got := m.Get()
	if got.Server.Port == 9 || got.Server.Token == "leaked" {
		t.Error("mutating the config returned by Get changed the manager's state")
	}
}

func TestChangeCallback(t *testing.T) {
	setTestHome(t)

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	calls := 0
	m.RegisterChangeCallback(func() { calls++ })

	m.Set(DefaultConfig())
	if calls != 1 {
		t.Errorf("callback calls = %d after Set, want 1", calls)
	}
}
