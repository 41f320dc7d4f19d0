package urdf

import "encoding/json"

// Node is one element of a parsed document. Each node owns its children;
// there are no parent pointers since every traversal is top-down.
type Node struct {
	Tag        string     `yaml:"tag"`
	Attributes Attributes `yaml:"attributes"`
	Children   []*Node    `yaml:"children"`
	Text       string     `yaml:"text,omitempty"`
}

// FirstChild returns the first direct child tagged tag, or nil.
func (n *Node) FirstChild(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// Walk visits n and its descendants depth-first in pre-order.
func (n *Node) Walk(fn func(*Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

func (n *Node) MarshalJSON() ([]byte, error) {
	type node struct {
		Tag        string     `json:"tag"`
		Attributes Attributes `json:"attributes"`
		Children   []*Node    `json:"children"`
		Text       string     `json:"text,omitempty"`
	}
	children := n.Children
	if children == nil {
		children = []*Node{}
	}
	return json.Marshal(node{
		Tag:        n.Tag,
		Attributes: n.Attributes,
		Children:   children,
		Text:       n.Text,
	})
}
