package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	p := Default()

	if err := p.Validate(); err != nil {
		t.Fatalf("Expected default settings to validate, got %v", err)
	}
	if p.Mode() != FileNone {
		t.Errorf("Expected no file mode, got %v", p.Mode())
	}
	if p.Workers <= 0 {
		t.Errorf("Expected positive worker count, got %d", p.Workers)
	}
	if p.Estimation.HitRatio != 0.5 || p.Estimation.BothModesFactor != 1.5 {
		t.Errorf("Unexpected estimation constants %+v", p.Estimation)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(p *Photons)
		wantErr bool
	}{
		{"defaults", func(p *Photons) {}, false},
		{"save with file", func(p *Photons) { p.Save, p.FileName = true, "a.ph" }, false},
		{"load without file", func(p *Photons) { p.Load = true }, true},
		{"save and load", func(p *Photons) { p.Save, p.Load, p.FileName = true, true, "a.ph" }, true},
		{"autostop above one", func(p *Photons) { p.AutoStopPercent = 1.5 }, true},
		{"negative jitter", func(p *Photons) { p.Jitter = -0.1 }, true},
		{"negative count", func(p *Photons) { p.SurfaceCount = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.modify(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}

	p := Default()
	p.Save, p.Load, p.FileName = true, true, "x"
	if !errors.Is(p.Validate(), ErrSaveAndLoad) {
		t.Error("Expected ErrSaveAndLoad")
	}
}

func TestResolve(t *testing.T) {
	p := Default()
	p.SurfaceSeparation = 0
	p.Resolve(Flags{SurfaceCount: 5000, Workers: 3, LoadFile: "scene.ph"})

	if p.SurfaceCount != 5000 {
		t.Errorf("Expected surface count 5000, got %d", p.SurfaceCount)
	}
	if p.SurfaceSeparation != 1.0 {
		t.Errorf("Expected unit separation for count target, got %v", p.SurfaceSeparation)
	}
	if p.Workers != 3 {
		t.Errorf("Expected 3 workers, got %d", p.Workers)
	}
	if p.Mode() != FileLoad || p.FileName != "scene.ph" {
		t.Errorf("Expected load of scene.ph, got %v %q", p.Mode(), p.FileName)
	}

	// A later save flag replaces the load
	p.Resolve(Flags{SaveFile: "out.ph"})
	if p.Mode() != FileSave || p.Load {
		t.Errorf("Expected save mode only, got %v (load=%v)", p.Mode(), p.Load)
	}

	p.Resolve(Flags{Disable: true})
	if p.Enabled {
		t.Error("Expected photons disabled")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photons.json")
	data := `{"surface_count": 20000, "autostop": 0.3, "save": true, "file_name": "x.ph", "estimation": {"hit_ratio": 0.25}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p.SurfaceCount != 20000 || p.AutoStopPercent != 0.3 {
		t.Errorf("Expected file values, got count=%d autostop=%v", p.SurfaceCount, p.AutoStopPercent)
	}
	if p.MaxGatherCount != 100 {
		t.Errorf("Expected default max gather count to survive, got %d", p.MaxGatherCount)
	}
	if p.Estimation.HitRatio != 0.25 {
		t.Errorf("Expected hit ratio 0.25, got %v", p.Estimation.HitRatio)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"save": true, "load": true, "file_name": "a"}`), 0644)
	if _, err := Load(bad); !errors.Is(err, ErrSaveAndLoad) {
		t.Errorf("Expected ErrSaveAndLoad, got %v", err)
	}
}
