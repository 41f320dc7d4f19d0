package vehicle

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/san-kum/urdfsim/internal/urdf"
)

const (
	tagLink     = "link"
	tagJoint    = "joint"
	tagInertial = "inertial"
	tagMass     = "mass"
	tagInertia  = "inertia"
	tagParent   = "parent"
	tagChild    = "child"
	tagAxis     = "axis"
)

type Extractor struct {
	logger zerolog.Logger
	strict bool
}

type Option func(*Extractor)

func WithLogger(l zerolog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// WithStrict makes a missing required attribute abort extraction instead
// of skipping the element.
func WithStrict(strict bool) Option {
	return func(e *Extractor) { e.strict = strict }
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract summarizes root with the default lenient extractor.
func Extract(root *urdf.Node) (*Parameters, error) {
	return NewExtractor().Extract(root)
}

// Extract visits every node of the tree in pre-order and aggregates the
// parameters. Malformed elements are skipped with a warning unless the
// extractor is strict; numeric format errors are always fatal.
func (e *Extractor) Extract(root *urdf.Node) (*Parameters, error) {
	if root == nil {
		return nil, errors.New("vehicle: nil document tree")
	}

	p := &Parameters{}
	pos := 0
	err := root.Walk(func(n *urdf.Node) error {
		defer func() { pos++ }()

		switch n.Tag {
		case tagLink:
			return e.link(p, n, pos)
		case tagJoint:
			return e.joint(p, n, pos)
		case tagInertial:
			return e.inertial(p, n, pos)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Debug().
		Int("links", len(p.Links)).
		Int("joints", len(p.Joints)).
		Float64("mass", p.Mass).
		Int("warnings", len(p.Warnings)).
		Msg("extracted vehicle parameters")
	return p, nil
}

func (e *Extractor) link(p *Parameters, n *urdf.Node, pos int) error {
	name, ok := n.Attributes.Get("name")
	if !ok {
		return e.malformed(p, &MalformedElementError{Tag: tagLink, Attribute: "name", Position: pos})
	}
	p.Links = append(p.Links, name)
	return nil
}

func (e *Extractor) joint(p *Parameters, n *urdf.Node, pos int) error {
	j := Joint{Axis: DefaultAxis}

	var ok bool
	if j.Name, ok = n.Attributes.Get("name"); !ok {
		return e.malformed(p, &MalformedElementError{Tag: tagJoint, Attribute: "name", Position: pos})
	}
	if j.Type, ok = n.Attributes.Get("type"); !ok {
		return e.malformed(p, &MalformedElementError{Tag: tagJoint, Attribute: "type", Position: pos})
	}

	if c := n.FirstChild(tagParent); c != nil {
		link, ok := c.Attributes.Get("link")
		if !ok {
			return e.malformed(p, &MalformedElementError{Tag: tagJoint + "/" + tagParent, Attribute: "link", Position: pos})
		}
		j.Parent = &link
	}
	if c := n.FirstChild(tagChild); c != nil {
		link, ok := c.Attributes.Get("link")
		if !ok {
			return e.malformed(p, &MalformedElementError{Tag: tagJoint + "/" + tagChild, Attribute: "link", Position: pos})
		}
		j.Child = &link
	}
	if c := n.FirstChild(tagAxis); c != nil {
		xyz, ok := c.Attributes.Get("xyz")
		if !ok {
			return e.malformed(p, &MalformedElementError{Tag: tagJoint + "/" + tagAxis, Attribute: "xyz", Position: pos})
		}
		j.Axis = xyz
	}

	p.Joints = append(p.Joints, j)
	return nil
}

func (e *Extractor) inertial(p *Parameters, n *urdf.Node, pos int) error {
	if m := n.FirstChild(tagMass); m != nil {
		raw, ok := m.Attributes.Get("value")
		if !ok {
			if err := e.malformed(p, &MalformedElementError{Tag: tagInertial + "/" + tagMass, Attribute: "value", Position: pos}); err != nil {
				return err
			}
		} else {
			v, err := parseFloat(tagMass, "value", raw)
			if err != nil {
				return err
			}
			p.Mass += v
		}
	}

	if in := n.FirstChild(tagInertia); in != nil {
		var diag [3]float64
		for i, key := range []string{"ixx", "iyy", "izz"} {
			v, err := parseFloat(tagInertia, key, in.Attributes.Value(key, "0"))
			if err != nil {
				return err
			}
			diag[i] = v
		}
		p.Inertia = p.Inertia.Add(Diag(diag[0], diag[1], diag[2]))
	}
	return nil
}

func (e *Extractor) malformed(p *Parameters, err *MalformedElementError) error {
	if e.strict {
		return err
	}
	p.Warnings = append(p.Warnings, err.Error())
	e.logger.Warn().
		Str("tag", err.Tag).
		Str("attribute", err.Attribute).
		Int("position", err.Position).
		Msg("skipping malformed element")
	return nil
}

func parseFloat(tag, attr, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &NumericFormatError{Tag: tag, Attribute: attr, Value: raw, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &NumericFormatError{Tag: tag, Attribute: attr, Value: raw, Err: errNonFinite}
	}
	return v, nil
}
