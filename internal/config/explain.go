package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Paths follow the file layout, for example:
//
//	window_gap
//	padding.top
//	colors.focused
//	keybindings.Mod4-h
//	rules.0.class
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

// lookupValue walks the YAML encoding of cfg so every key the file format
// accepts can be explained without a hand-written table.
func lookupValue(cfg *Config, path string) (any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	node := &doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}

	rest := path
	for rest != "" {
		var next *yaml.Node
		switch node.Kind {
		case yaml.MappingNode:
			// Keys never contain dots, so at most one key matches.
			for i := 0; i+1 < len(node.Content); i += 2 {
				key := node.Content[i].Value
				if rest == key || strings.HasPrefix(rest, key+".") {
					next = node.Content[i+1]
					rest = strings.TrimPrefix(strings.TrimPrefix(rest, key), ".")
					break
				}
			}
		case yaml.SequenceNode:
			head, tail, _ := strings.Cut(rest, ".")
			idx, err := strconv.Atoi(head)
			if err == nil && idx >= 0 && idx < len(node.Content) {
				next = node.Content[idx]
				rest = tail
			}
		}
		if next == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, path)
		}
		node = next
	}

	var out any
	if err := node.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
