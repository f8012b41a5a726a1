package candidates

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"ranker/internal/logging"
	"ranker/internal/types"
)

// yamlList accepts both a bare sequence and {candidates: [...]}.
type yamlList struct {
	Candidates []string `yaml:"candidates"`
}

// Import reads candidate names from path. Names are trimmed and blank entries
// skipped. An empty list or a repeated name is rejected with
// types.ErrInvalidArgument; read and parse failures wrap types.ErrIO.
func Import(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates %s: %v: %w", path, err, types.ErrIO)
	}

	var raw []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = parseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("parse candidates %s: %v: %w", path, err, types.ErrIO)
		}
	default:
		raw, err = parseLines(data)
		if err != nil {
			return nil, fmt.Errorf("read candidates %s: %v: %w", path, err, types.ErrIO)
		}
	}

	names, err := clean(raw)
	if err != nil {
		return nil, fmt.Errorf("candidates %s: %w", path, err)
	}

	logging.Candidates("imported %d candidates from %s", len(names), path)
	return names, nil
}

func parseLines(data []byte) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

func parseYAML(data []byte) ([]string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	doc := node.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := doc.Decode(&names); err != nil {
			return nil, err
		}
		return names, nil
	case yaml.MappingNode:
		var list yamlList
		if err := doc.Decode(&list); err != nil {
			return nil, err
		}
		return list.Candidates, nil
	default:
		return nil, fmt.Errorf("expected a list of names or a candidates key")
	}
}

func clean(raw []string) ([]string, error) {
	names := make([]string, 0, len(raw))
	seen := make(map[string]int, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(strings.TrimPrefix(r, "\ufeff"))
		if name == "" {
			continue
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("%q listed twice (entries %d and %d): %w", name, prev+1, len(names)+1, types.ErrInvalidArgument)
		}
		seen[name] = len(names)
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no candidate names found: %w", types.ErrInvalidArgument)
	}
	return names, nil
}
