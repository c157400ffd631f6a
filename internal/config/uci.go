package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/shlex"
)

type uciSection struct {
	typ     string
	name    string
	options map[string]any
}

// ReadUCI reads the options of one section from a UCI package file such as
// /etc/config/fancontrol.
func ReadUCI(path, sectionType, sectionName string) (map[string]any, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseUCI(f, sectionType, sectionName)
}

// ParseUCI parses UCI syntax:
//
//	config fancontrol 'settings'
//		option enable '1'
//		option thermal_file '/sys/devices/virtual/thermal/thermal_zone0/temp'
//
// It returns the options of the section named sectionName, or of the first
// section of type sectionType when no section has that name. Values are
// returned as strings; list entries as []string.
func ParseUCI(r io.Reader, sectionType, sectionName string) (map[string]any, error) {
	var (
		sections []*uciSection
		current  *uciSection
		lineNo   int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++

		tokens, err := shlex.Split(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if len(tokens) == 0 {
			continue
		}

		switch tokens[0] {
		case "package":
		case "config":
			if len(tokens) < 2 || len(tokens) > 3 {
				return nil, fmt.Errorf("line %d: config needs a type and an optional name", lineNo)
			}
			current = &uciSection{typ: tokens[1], options: make(map[string]any)}
			if len(tokens) == 3 {
				current.name = tokens[2]
			}
			sections = append(sections, current)
		case "option", "list":
			if current == nil {
				return nil, fmt.Errorf("line %d: %s outside of a config section", lineNo, tokens[0])
			}
			if len(tokens) < 2 || len(tokens) > 3 {
				return nil, fmt.Errorf("line %d: %s needs a name and a value", lineNo, tokens[0])
			}
			value := ""
			if len(tokens) == 3 {
				value = tokens[2]
			}
			if tokens[0] == "option" {
				current.options[tokens[1]] = value
				continue
			}
			list, _ := current.options[tokens[1]].([]string)
			current.options[tokens[1]] = append(list, value)
		default:
			return nil, fmt.Errorf("line %d: unknown keyword %q", lineNo, tokens[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if s := pickSection(sections, sectionType, sectionName); s != nil {
		return s.options, nil
	}

	return map[string]any{}, nil
}

func pickSection(sections []*uciSection, sectionType, sectionName string) *uciSection {
	var typed *uciSection
	for _, s := range sections {
		if sectionName != "" && s.name == sectionName {
			return s
		}
		if typed == nil && s.typ == sectionType {
			typed = s
		}
	}

	return typed
}
