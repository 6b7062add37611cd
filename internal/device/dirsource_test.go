package device

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDirSourceOpenMissingRoot(t *testing.T) {
	s := NewDirSource(filepath.Join(t.TempDir(), "nope"))
	err := s.Open(context.Background())
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("Open() = %v; want ErrDeviceUnavailable", err)
	}
}

func TestDirSourceListRollsSorted(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"102APPLE", "100APPLE", "101APPLE"} {
		if err := os.Mkdir(filepath.Join(root, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(t, filepath.Join(root, "stray.txt"), "not a roll")

	s := NewDirSource(root)
	if err := s.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	rolls, err := s.ListRolls(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"100APPLE", "101APPLE", "102APPLE"}
	if len(rolls) != len(want) {
		t.Fatalf("got %d rolls; want %d", len(rolls), len(want))
	}
	for i, name := range want {
		if rolls[i].Name != name || rolls[i].Ordinal != i {
			t.Errorf("rolls[%d] = %+v; want name %s ordinal %d", i, rolls[i], name, i)
		}
	}
}

func TestDirSourceListFilesAndStream(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "100APPLE", "IMG_0001.JPG"), "jpegdata")
	writeFile(t, filepath.Join(root, "100APPLE", "IMG_0002.MOV"), "movdata!!")
	if err := os.Mkdir(filepath.Join(root, "100APPLE", "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	s := NewDirSource(root)
	if err := s.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	files, err := s.ListFiles(context.Background(), Roll{Name: "100APPLE"})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files; want 2 (nested dirs must be ignored)", len(files))
	}
	if files[0].Name != "IMG_0001.JPG" || files[0].Size != 8 {
		t.Errorf("files[0] = %+v; want IMG_0001.JPG size 8", files[0])
	}

	rc, err := s.OpenStream(context.Background(), files[1])
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "movdata!!" {
		t.Errorf("stream content = %q; want %q", data, "movdata!!")
	}
}

func TestDirSourceListFilesMissingRoll(t *testing.T) {
	s := NewDirSource(t.TempDir())
	if err := s.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	_, err := s.ListFiles(context.Background(), Roll{Name: "404APPLE"})
	var enumErr *EnumerationError
	if !errors.As(err, &enumErr) {
		t.Fatalf("ListFiles() = %v; want EnumerationError", err)
	}
	if enumErr.Roll != "404APPLE" {
		t.Errorf("EnumerationError.Roll = %s; want 404APPLE", enumErr.Roll)
	}
}
