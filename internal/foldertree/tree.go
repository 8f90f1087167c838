// Package foldertree holds the folder-structure template users configure:
// a tree of folders and seed files deployed into every new client folder,
// whose folder paths double as deposit-folder identifiers.
package foldertree

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNodeNotFound indicates the node id is not in the tree
	ErrNodeNotFound = errors.New("folder node not found")
	// ErrNotAFolder indicates a child was appended to a file node
	ErrNotAFolder = errors.New("node is not a folder")
	// ErrInvalidName indicates an empty or separator-bearing node name
	ErrInvalidName = errors.New("invalid node name")
)

// NodeType distinguishes folders from seed files.
type NodeType string

const (
	TypeFolder NodeType = "folder"
	TypeFile   NodeType = "file"
)

// Node is one entry of the template tree. Children is meaningful for
// folders, Content for files. Nodes are only ever appended under a single
// parent, never re-parented, which keeps the tree acyclic by construction.
type Node struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     NodeType `json:"type"`
	Children []*Node  `json:"children,omitempty"`
	Content  string   `json:"content,omitempty"`
}

// Tree is an indexed folder-structure template. Lookup, rename and removal
// work by stable node id; display paths are derived on demand.
type Tree struct {
	roots  []*Node
	index  map[string]*Node
	parent map[string]string
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{
		index:  make(map[string]*Node),
		parent: make(map[string]string),
	}
}

// FromNodes builds an indexed tree over existing roots, assigning a fresh
// uuid to any node that lacks one (older stored structures carry no ids).
func FromNodes(roots []*Node) *Tree {
	t := New()
	t.roots = roots
	for _, root := range roots {
		t.register(root, "")
	}
	return t
}

// FromJSON decodes a stored folder structure.
func FromJSON(data []byte) (*Tree, error) {
	if len(data) == 0 {
		return New(), nil
	}
	var roots []*Node
	if err := json.Unmarshal(data, &roots); err != nil {
		return nil, err
	}
	return FromNodes(roots), nil
}

// MarshalJSON encodes the roots for persistence.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.roots)
}

func (t *Tree) register(n *Node, parentID string) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	t.index[n.ID] = n
	if parentID != "" {
		t.parent[n.ID] = parentID
	}
	for _, child := range n.Children {
		t.register(child, n.ID)
	}
}

// Roots returns the top-level nodes.
func (t *Tree) Roots() []*Node {
	return t.roots
}

// Node returns the node for id.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.index[id]
	return n, ok
}

// Add appends a new node under parentID ("" for a root) and returns it.
func (t *Tree) Add(parentID, name string, typ NodeType, content string) (*Node, error) {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, "/\\") {
		return nil, ErrInvalidName
	}

	node := &Node{
		ID:      uuid.NewString(),
		Name:    name,
		Type:    typ,
		Content: content,
	}

	if parentID == "" {
		t.roots = append(t.roots, node)
		t.index[node.ID] = node
		return node, nil
	}

	parent, ok := t.index[parentID]
	if !ok {
		return nil, ErrNodeNotFound
	}
	if parent.Type != TypeFolder {
		return nil, ErrNotAFolder
	}
	parent.Children = append(parent.Children, node)
	t.index[node.ID] = node
	t.parent[node.ID] = parentID
	return node, nil
}

// Rename changes a node's display name. The id, and therefore every
// reference held elsewhere, stays stable.
func (t *Tree) Rename(id, name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, "/\\") {
		return ErrInvalidName
	}
	n, ok := t.index[id]
	if !ok {
		return ErrNodeNotFound
	}
	n.Name = name
	return nil
}

// Remove deletes the node and its whole subtree, returning the logical
// paths of every removed folder node so callers can cascade cleanup of
// references (sender entries pointing at a removed deposit target).
func (t *Tree) Remove(id string) ([]string, error) {
	n, ok := t.index[id]
	if !ok {
		return nil, ErrNodeNotFound
	}

	var removed []string
	t.walk(n, func(node *Node) {
		if node.Type == TypeFolder {
			if p, err := t.LogicalPath(node.ID); err == nil {
				removed = append(removed, p)
			}
		}
	})

	parentID, hasParent := t.parent[id]
	if hasParent {
		parent := t.index[parentID]
		parent.Children = deleteNode(parent.Children, id)
	} else {
		t.roots = deleteNode(t.roots, id)
	}

	t.walk(n, func(node *Node) {
		delete(t.index, node.ID)
		delete(t.parent, node.ID)
	})

	return removed, nil
}

// LogicalPath returns the '/'-joined ancestor names for a node, the form
// deposit-folder settings reference.
func (t *Tree) LogicalPath(id string) (string, error) {
	n, ok := t.index[id]
	if !ok {
		return "", ErrNodeNotFound
	}
	parts := []string{n.Name}
	for {
		parentID, has := t.parent[n.ID]
		if !has {
			break
		}
		n = t.index[parentID]
		parts = append([]string{n.Name}, parts...)
	}
	return strings.Join(parts, "/"), nil
}

// FolderPaths lists the logical paths of every folder node, the candidate
// values for deposit-folder selection.
func (t *Tree) FolderPaths() []string {
	var paths []string
	for _, root := range t.roots {
		t.walk(root, func(n *Node) {
			if n.Type == TypeFolder {
				if p, err := t.LogicalPath(n.ID); err == nil {
					paths = append(paths, p)
				}
			}
		})
	}
	return paths
}

func (t *Tree) walk(n *Node, fn func(*Node)) {
	fn(n)
	for _, child := range n.Children {
		t.walk(child, fn)
	}
}

func deleteNode(nodes []*Node, id string) []*Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}
