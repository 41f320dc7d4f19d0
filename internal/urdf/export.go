package urdf

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// WriteJSON writes the tree as {tag, attributes, children, text} objects.
func WriteJSON(w io.Writer, n *Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(n)
}

func WriteYAML(w io.Writer, n *Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return err
	}
	return enc.Close()
}

// SaveFile persists the tree, as YAML for .yaml/.yml paths and JSON otherwise.
func SaveFile(path string, n *Node) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "failed to close %s", path)
		}
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = WriteYAML(f, n)
	default:
		err = WriteJSON(f, n)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// TreeFileName names the dump of document in the given format ("json" or
// "yaml"): rover.urdf becomes rover.json. Documents without the .urdf
// extension keep their name and gain the format's.
func TreeFileName(document, format string) string {
	base := filepath.Base(document)
	if ext := filepath.Ext(base); strings.EqualFold(ext, "."+Extension) {
		base = strings.TrimSuffix(base, ext)
	}
	return base + "." + format
}
