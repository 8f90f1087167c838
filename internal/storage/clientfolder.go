package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/classeur/core/internal/filing"
	"github.com/classeur/core/internal/foldertree"
)

// CreateClientFolder creates a folder for a new correspondent under root and
// deploys the folder-structure template into it: template folders become
// directories, template files are written with their seed content. The
// client name is sanitized with the mandatory cleaning pass so it is always
// a valid single path segment.
func CreateClientFolder(root, name string, tree *foldertree.Tree) (string, error) {
	safeName := filing.Sanitize(name, filing.DefaultCleaningPolicy())
	if safeName == "" || allUnderscores(safeName) {
		return "", ErrEmptyFolderName
	}

	clientDir := filepath.Join(root, safeName)
	if err := os.MkdirAll(clientDir, 0755); err != nil {
		return "", fmt.Errorf("%w: %s", ErrFolderCreateFailed, err.Error())
	}

	if tree != nil {
		for _, node := range tree.Roots() {
			if err := deployNode(clientDir, node); err != nil {
				return "", err
			}
		}
	}

	return clientDir, nil
}

// deployNode materializes one template node (and its subtree) under dir.
func deployNode(dir string, node *foldertree.Node) error {
	safeName := filing.Sanitize(node.Name, filing.DefaultCleaningPolicy())
	if safeName == "" {
		return nil
	}
	target := filepath.Join(dir, safeName)

	if node.Type == foldertree.TypeFile {
		if err := os.WriteFile(target, []byte(node.Content), 0644); err != nil {
			return fmt.Errorf("%w: %s", ErrFileWriteFailed, err.Error())
		}
		return nil
	}

	if err := os.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("%w: %s", ErrFolderCreateFailed, err.Error())
	}
	for _, child := range node.Children {
		if err := deployNode(target, child); err != nil {
			return err
		}
	}
	return nil
}

func allUnderscores(s string) bool {
	for _, r := range s {
		if r != '_' {
			return false
		}
	}
	return true
}
