package photon

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// ErrTruncated reports a photon file that ends inside a section
var ErrTruncated = errors.New("photon: truncated photon file")

// The file is a sequence of sections, each an int32 count followed by that
// many packed records, all in the platform's native byte order:
//
//	[surface][global, when enabled][media]
//
// A file that ends cleanly after a section boundary is read as if the
// remaining sections held no photons.

// WriteSection writes the count and records of s
func WriteSection(w io.Writer, s *Store) error {
	n := 0
	if s != nil {
		n = s.numPhotons
	}
	if n > math.MaxInt32 {
		return fmt.Errorf("photon: %d photons exceed the file format limit", n)
	}

	var buf [RecordSize]byte
	binary.NativeEndian.PutUint32(buf[:4], uint32(int32(n)))
	if _, err := w.Write(buf[:4]); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		encodeRecord(buf[:], s.At(Handle(i)))
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
	return nil
}

// ReadSection appends one section to s. It reports present=false when the
// reader is already at EOF, and ErrTruncated when the data ends mid-section.
func ReadSection(r io.Reader, s *Store) (present bool, err error) {
	var buf [RecordSize]byte
	if _, err := io.ReadFull(r, buf[:4]); err != nil {
		if err == io.EOF {
			return false, nil
		}
		if err == io.ErrUnexpectedEOF {
			return false, ErrTruncated
		}
		return false, err
	}

	n := int32(binary.NativeEndian.Uint32(buf[:4]))
	if n < 0 {
		return false, fmt.Errorf("photon: negative section count %d", n)
	}
	for i := int32(0); i < n; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return false, fmt.Errorf("%w: record %d of %d", ErrTruncated, i, n)
			}
			return false, err
		}
		decodeRecord(buf[:], s.At(s.Allocate()))
	}
	return true, nil
}

// Save writes the surface, global (when non-nil) and media maps to path
func Save(path string, surface, global, media *Store) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("photon: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("photon: close %s: %w", path, cerr)
		}
	}()

	w := bufio.NewWriter(f)
	sections := []*Store{surface}
	if global != nil {
		sections = append(sections, global)
	}
	sections = append(sections, media)
	for _, s := range sections {
		if err := WriteSection(w, s); err != nil {
			return fmt.Errorf("photon: write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("photon: write %s: %w", path, err)
	}
	return nil
}

// Load reads a file written by Save into empty stores. The surface section
// is required; a missing global or media section leaves that store empty.
// Loaded stores keep the saved kd-tree order and are marked built.
func Load(path string, surface, global, media *Store) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("photon: open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	present, err := ReadSection(r, surface)
	if err != nil {
		return fmt.Errorf("photon: read %s surface section: %w", path, err)
	}
	if !present {
		return fmt.Errorf("photon: read %s: %w: missing surface section", path, ErrTruncated)
	}
	surface.built = true

	rest := []*Store{media}
	if global != nil {
		rest = []*Store{global, media}
	}
	for _, s := range rest {
		present, err := ReadSection(r, s)
		if err != nil {
			return fmt.Errorf("photon: read %s: %w", path, err)
		}
		if !present {
			break
		}
		s.built = true
	}
	return nil
}

func encodeRecord(buf []byte, r *Record) {
	binary.NativeEndian.PutUint32(buf[0:], math.Float32bits(r.Loc[0]))
	binary.NativeEndian.PutUint32(buf[4:], math.Float32bits(r.Loc[1]))
	binary.NativeEndian.PutUint32(buf[8:], math.Float32bits(r.Loc[2]))
	copy(buf[12:16], r.Color[:])
	buf[16] = r.Info
	buf[17] = byte(r.Theta)
	buf[18] = byte(r.Phi)
	buf[19] = 0
}

func decodeRecord(buf []byte, r *Record) {
	r.Loc[0] = math.Float32frombits(binary.NativeEndian.Uint32(buf[0:]))
	r.Loc[1] = math.Float32frombits(binary.NativeEndian.Uint32(buf[4:]))
	r.Loc[2] = math.Float32frombits(binary.NativeEndian.Uint32(buf[8:]))
	copy(r.Color[:], buf[12:16])
	r.Info = buf[16]
	r.Theta = int8(buf[17])
	r.Phi = int8(buf[18])
}
