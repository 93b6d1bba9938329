package testing

import (
	"testing"
)

func TestSampleRecord(t *testing.T) {
	r := SampleRecord()
	if r.Len() != 9 {
		t.Errorf("SampleRecord() fields = %d, want 9", r.Len())
	}
	if paths := SensitivePaths(r); len(paths) != 0 {
		t.Errorf("SampleRecord() sensitive paths = %v, want none", paths)
	}
}

func TestSensitivePaths(t *testing.T) {
	paths := SensitivePaths(SensitiveRecord())
	want := []string{"password", "token", "credentials.apiKey"}

	if len(paths) != len(want) {
		t.Fatalf("SensitivePaths() = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("SensitivePaths()[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestDeepRecord(t *testing.T) {
	r := DeepRecord(3)
	depth := 0
	for r != nil {
		depth++
		child, ok := r.Get("child")
		if !ok {
			break
		}
		r, _ = child.Object()
	}
	if depth != 3 {
		t.Errorf("DeepRecord(3) depth = %d, want 3", depth)
	}
}
