package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dealdesk/backend/internal/domain"
)

// productFile is the object form of an input file
type productFile struct {
	Products []domain.Product `yaml:"products"`
}

// readProducts loads products from path, or from stdin when path is "-"
func readProducts(path string, stdin io.Reader) ([]domain.Product, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return parseProducts(data)
}

// parseProducts accepts a YAML or JSON document holding either a list of
// products or an object with a products key
func parseProducts(data []byte) ([]domain.Product, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []domain.Product{}, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(trimmed, &node); err != nil {
		return nil, fmt.Errorf("failed to parse products: %w", err)
	}
	if len(node.Content) == 0 {
		return []domain.Product{}, nil
	}

	switch root := node.Content[0]; root.Kind {
	case yaml.SequenceNode:
		var products []domain.Product
		if err := root.Decode(&products); err != nil {
			return nil, fmt.Errorf("failed to decode products: %w", err)
		}
		return products, nil
	case yaml.MappingNode:
		var file productFile
		if err := root.Decode(&file); err != nil {
			return nil, fmt.Errorf("failed to decode products: %w", err)
		}
		if file.Products == nil {
			return nil, fmt.Errorf("%w: no products key in input", domain.ErrInvalidRequest)
		}
		return file.Products, nil
	default:
		return nil, fmt.Errorf("%w: expected a list of products", domain.ErrInvalidRequest)
	}
}
