package catalog

// Pool definitions can be overridden from a YAML file so that pets can be
// added or repriced without a rebuild.

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(content []byte) (*Pools, error) {
	var pools Pools
	if err := yaml.Unmarshal(content, &pools); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &pools, nil
}

func (p *Parser) ParseFile(path string) (*Pools, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pool file: %w", err)
	}

	return p.Parse(content)
}
