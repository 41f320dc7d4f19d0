package urdf

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gopkg.in/yaml.v3"
)

func sampleTree() *Node {
	return &Node{
		Tag:        "robot",
		Attributes: NewAttributes(Attr{"name", "r"}),
		Children: []*Node{
			{Tag: "link", Attributes: NewAttributes(Attr{"name", "a"})},
			{Tag: "joint", Attributes: NewAttributes(Attr{"name", "j"}, Attr{"type", "fixed"}), Children: []*Node{
				{Tag: "parent", Attributes: NewAttributes(Attr{"link", "first"})},
				{Tag: "parent", Attributes: NewAttributes(Attr{"link", "second"})},
			}},
			{Tag: "material", Text: "grey"},
		},
	}
}

func TestFirstChildWins(t *testing.T) {
	joint := sampleTree().Children[1]
	p := joint.FirstChild("parent")
	if p == nil {
		t.Fatal("expected parent child")
	}
	if got := p.Attributes.Value("link", ""); got != "first" {
		t.Errorf("expected first parent to win, got %q", got)
	}
	if joint.FirstChild("child") != nil {
		t.Error("expected nil for missing tag")
	}
}

func TestWalkPreOrder(t *testing.T) {
	var tags []string
	err := sampleTree().Walk(func(n *Node) error {
		tags = append(tags, n.Tag)
		return nil
	})
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	want := []string{"robot", "link", "joint", "parent", "parent", "material"}
	if diff := cmp.Diff(want, tags); diff != "" {
		t.Errorf("walk order mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkStops(t *testing.T) {
	stop := errors.New("stop")
	visited := 0
	err := sampleTree().Walk(func(n *Node) error {
		visited++
		if n.Tag == "joint" {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected stop error, got %v", err)
	}
	if visited != 3 {
		t.Errorf("expected 3 visits, got %d", visited)
	}
}

func TestCount(t *testing.T) {
	if got := sampleTree().Count(); got != 6 {
		t.Errorf("expected 6 nodes, got %d", got)
	}
}

func TestAttributesOrderAndOverwrite(t *testing.T) {
	a := NewAttributes(Attr{"ixx", "1"}, Attr{"iyy", "2"})
	a.Set("izz", "3")
	a.Set("ixx", "4")

	if diff := cmp.Diff([]string{"ixx", "iyy", "izz"}, a.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if v, _ := a.Get("ixx"); v != "4" {
		t.Errorf("expected overwritten value 4, got %q", v)
	}
	if a.Value("missing", "0") != "0" {
		t.Error("expected default for missing key")
	}
	if a.Len() != 3 {
		t.Errorf("expected 3 attributes, got %d", a.Len())
	}
}

func TestWriteJSONMatchesTreeShape(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleTree()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"children": []`) {
		t.Error("leaf nodes should carry an empty children list")
	}
	if !strings.Contains(out, `"text": "grey"`) {
		t.Error("text missing from output")
	}
	if strings.Index(out, `"name": "j"`) > strings.Index(out, `"type": "fixed"`) {
		t.Error("attribute order not preserved")
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if _, ok := decoded["text"]; ok {
		t.Error("root without text should omit the text key")
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteYAML(&buf, sampleTree()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var decoded struct {
		Tag        string            `yaml:"tag"`
		Attributes map[string]string `yaml:"attributes"`
		Children   []struct {
			Tag string `yaml:"tag"`
		} `yaml:"children"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid yaml: %v", err)
	}
	if decoded.Tag != "robot" || decoded.Attributes["name"] != "r" {
		t.Errorf("unexpected root: %+v", decoded)
	}
	if len(decoded.Children) != 3 {
		t.Errorf("expected 3 children, got %d", len(decoded.Children))
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tree, err := ParseString(`<robot name="r"><link name="a"/></robot>`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	for _, name := range []string{"tree.json", "nested/tree.yaml"} {
		path := filepath.Join(dir, name)
		if err := SaveFile(path, tree); err != nil {
			t.Fatalf("save %s failed: %v", name, err)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Errorf("expected non-empty %s", name)
		}
	}
}

func TestTreeFileName(t *testing.T) {
	tests := []struct {
		document, format, want string
	}{
		{"rover.urdf", "json", "rover.json"},
		{"models/rover.URDF", "yaml", "rover.yaml"},
		{"robot.xml", "json", "robot.xml.json"},
		{"plain", "yaml", "plain.yaml"},
	}

	for _, tt := range tests {
		if got := TreeFileName(tt.document, tt.format); got != tt.want {
			t.Errorf("TreeFileName(%q, %q) = %q, want %q", tt.document, tt.format, got, tt.want)
		}
	}
}

func TestParseIdempotentStructure(t *testing.T) {
	src := `<robot name="r"><link name="a"><inertial><mass value="1"/></inertial></link></robot>`
	a, err := ParseString(src)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseString(src)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("trees differ:\n%s", diff)
	}
}
