package checksum

import "testing"

func TestSum_Stable(t *testing.T) {
	if Sum([]byte("abc")) != Sum([]byte("abc")) {
		t.Fatal("same input should produce the same digest")
	}
	if Sum([]byte("abc")) == Sum([]byte("abd")) {
		t.Fatal("different input should produce different digests")
	}
}

func TestSumFiles_OrderIndependent(t *testing.T) {
	a := SumFiles(map[string]string{"theory.md": "1", "examples/a.go": "2"})
	b := SumFiles(map[string]string{"examples/a.go": "2", "theory.md": "1"})
	if a != b {
		t.Errorf("digest depends on map order: %s != %s", a, b)
	}
}

func TestSumFiles_DetectsRename(t *testing.T) {
	a := SumFiles(map[string]string{"a.go": "x"})
	b := SumFiles(map[string]string{"b.go": "x"})
	if a == b {
		t.Error("renaming a file should change the digest")
	}
}
