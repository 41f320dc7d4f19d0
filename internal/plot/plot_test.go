package plot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/urdfsim/internal/dynamo"
)

var smallSize = Size{WidthIn: 2, HeightIn: 1.5, DPI: 72}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleResult() *dynamo.Result {
	r := &dynamo.Result{}
	for i := 0; i < 5; i++ {
		t := float64(i)
		r.Times = append(r.Times, t)
		r.States = append(r.States, dynamo.State{t, t * t, 0, 1, 2 * t, 0, 0.1, 0, 0})
	}
	return r
}

func TestWritePNG(t *testing.T) {
	p, err := Trajectory(sampleResult())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WritePNG(&buf, p, smallSize); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Error("output is not a PNG")
	}
}

func TestComponentsErrors(t *testing.T) {
	if _, err := Components(sampleResult(), []int{9}, "t", "y"); err == nil {
		t.Error("expected out of range error")
	}
	if _, err := Components(sampleResult(), nil, "t", "y"); err == nil {
		t.Error("expected error for no components")
	}
	if _, err := Components(&dynamo.Result{}, []int{0}, "t", "y"); err == nil {
		t.Error("expected error for empty result")
	}
	if _, err := Trajectory(&dynamo.Result{}); err == nil {
		t.Error("expected error for empty result")
	}
}

func TestSaveAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")

	files, err := SaveAll(sampleResult(), dir, smallSize)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 4 {
		t.Fatalf("expected 4 files, got %v", files)
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(data, pngMagic) {
			t.Errorf("%s is not a PNG", f)
		}
	}
}
