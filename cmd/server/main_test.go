package main

import (
	"testing"

	"github.com/simplygenda/backend/internal/config"
)

func TestApplyFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	applyFlags(cfg, ":9000", "/srv/agenda", "/srv/www")

	if cfg.Listen != ":9000" || cfg.StaticDir != "/srv/www" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.AvatarDir != "/srv/agenda/avatars" {
		t.Errorf("avatar dir = %q", cfg.AvatarDir)
	}
	if cfg.Snapshot.URL != "http://localhost:9000/calendar" || cfg.Snapshot.Output != "/srv/agenda/calendar.png" {
		t.Errorf("snapshot = %+v", cfg.Snapshot)
	}
}

func TestApplyFlagsKeepsExplicitPaths(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AvatarDir = "/mnt/avatars"
	applyFlags(cfg, "", "/srv/agenda", "")

	if cfg.AvatarDir != "/mnt/avatars" {
		t.Errorf("avatar dir = %q", cfg.AvatarDir)
	}
	if cfg.Listen != ":8099" {
		t.Errorf("listen = %q", cfg.Listen)
	}
}
