package photon

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func assertSameRecords(t *testing.T, expected, actual *Store) {
	t.Helper()
	if expected.Len() != actual.Len() {
		t.Fatalf("Expected %d photons, got %d", expected.Len(), actual.Len())
	}
	for i := 0; i < expected.Len(); i++ {
		if *expected.At(Handle(i)) != *actual.At(Handle(i)) {
			t.Fatalf("Record %d differs: expected %+v, got %+v", i, *expected.At(Handle(i)), *actual.At(Handle(i)))
		}
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 1000} {
		surface := randomStore(n, int64(n))
		surface.BuildTree()
		media := randomStore(n/2, int64(n)+1)
		media.BuildTree()

		path := filepath.Join(t.TempDir(), "photons.bin")
		if err := Save(path, surface, nil, media); err != nil {
			t.Fatalf("n=%d: save failed: %v", n, err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("n=%d: stat failed: %v", n, err)
		}
		if want := int64(8 + RecordSize*(n+n/2)); info.Size() != want {
			t.Errorf("n=%d: expected file size %d, got %d", n, want, info.Size())
		}

		loadedSurface, loadedMedia := NewStore(), NewStore()
		if err := Load(path, loadedSurface, nil, loadedMedia); err != nil {
			t.Fatalf("n=%d: load failed: %v", n, err)
		}
		assertSameRecords(t, surface, loadedSurface)
		assertSameRecords(t, media, loadedMedia)
		if !loadedSurface.Built() {
			t.Errorf("n=%d: expected loaded surface store to be built", n)
		}
	}
}

func TestSaveLoad_GlobalSection(t *testing.T) {
	surface := randomStore(10, 1)
	global := randomStore(20, 2)
	media := randomStore(5, 3)

	path := filepath.Join(t.TempDir(), "photons.bin")
	if err := Save(path, surface, global, media); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	s, g, m := NewStore(), NewStore(), NewStore()
	if err := Load(path, s, g, m); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertSameRecords(t, surface, s)
	assertSameRecords(t, global, g)
	assertSameRecords(t, media, m)
}

func TestLoad_MissingTrailingSections(t *testing.T) {
	surface := randomStore(10, 1)

	var buf bytes.Buffer
	if err := WriteSection(&buf, surface); err != nil {
		t.Fatalf("WriteSection failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "surface-only.bin")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	s, g, m := NewStore(), NewStore(), NewStore()
	if err := Load(path, s, g, m); err != nil {
		t.Fatalf("Expected sections after the surface to be optional, got %v", err)
	}
	assertSameRecords(t, surface, s)
	if g.Len() != 0 || m.Len() != 0 {
		t.Errorf("Expected empty global and media maps, got %d and %d", g.Len(), m.Len())
	}
}

func TestLoad_Truncated(t *testing.T) {
	surface := randomStore(10, 1)
	var buf bytes.Buffer
	if err := WriteSection(&buf, surface); err != nil {
		t.Fatalf("WriteSection failed: %v", err)
	}
	full := buf.Bytes()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty file", nil},
		{"partial count", full[:2]},
		{"partial record", full[:4+RecordSize*3+7]},
		{"missing records", full[:4+RecordSize*5]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.bin")
			if err := os.WriteFile(path, tt.data, 0o644); err != nil {
				t.Fatal(err)
			}
			err := Load(path, NewStore(), nil, NewStore())
			if !errors.Is(err, ErrTruncated) {
				t.Errorf("Expected ErrTruncated, got %v", err)
			}
		})
	}
}

func TestLoad_TruncatedMediaSection(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSection(&buf, randomStore(3, 1)); err != nil {
		t.Fatal(err)
	}
	if err := WriteSection(&buf, randomStore(4, 2)); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()[:buf.Len()-1]

	path := filepath.Join(t.TempDir(), "bad.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Load(path, NewStore(), nil, NewStore()); !errors.Is(err, ErrTruncated) {
		t.Errorf("Expected ErrTruncated, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "does-not-exist.bin"), NewStore(), nil, NewStore())
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected wrapped not-exist error, got %v", err)
	}
}

func TestSave_UnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "photons.bin")
	if err := Save(path, randomStore(1, 1), nil, NewStore()); err == nil {
		t.Error("Expected error saving into a missing directory")
	}
}
