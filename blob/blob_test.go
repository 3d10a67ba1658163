package blob

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndRead(t *testing.T) {
	s := NewStore(t.TempDir())

	rel, err := s.Save(KindTemplate, "notice.docx", []byte("docx bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(rel, "templates/") || !strings.HasSuffix(rel, "-notice.docx") {
		t.Errorf("rel path = %q", rel)
	}

	got, err := s.Read(rel)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, []byte("docx bytes")) {
		t.Errorf("Read = %q", got)
	}
}

func TestSaveDistinctPaths(t *testing.T) {
	s := NewStore(t.TempDir())

	a, err := s.Save(KindGenerated, "out.pdf", []byte("a"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Save(KindGenerated, "out.pdf", []byte("b"))
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("same name produced same path %q", a)
	}
}

func TestSaveSanitizesName(t *testing.T) {
	s := NewStore(t.TempDir())

	rel, err := s.Save(KindSignature, "../../etc/pass wd.png", []byte("img"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if strings.Contains(rel, "..") || strings.Contains(filepath.Base(rel), "/") {
		t.Errorf("unsafe stored path %q", rel)
	}
	if !strings.HasSuffix(rel, "-pass_wd.png") {
		t.Errorf("stored name = %q", rel)
	}
}

func TestReadMissing(t *testing.T) {
	s := NewStore(t.TempDir())
	if _, err := s.Read("approved/nope.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReadRejectsTraversal(t *testing.T) {
	s := NewStore(t.TempDir())
	for _, p := range []string{"../outside", "/etc/passwd", "..", ""} {
		if _, err := s.Read(p); !errors.Is(err, ErrNotFound) {
			t.Errorf("Read(%q) err = %v, want ErrNotFound", p, err)
		}
	}
}

func TestNoTmpLeftovers(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if _, err := s.Save(KindApproved, "signed.pdf", []byte("pdf")); err != nil {
		t.Fatal(err)
	}
	matches, err := filepath.Glob(filepath.Join(dir, "approved", "*.tmp"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("tmp files left behind: %v", matches)
	}
}
