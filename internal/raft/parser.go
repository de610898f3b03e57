package raft

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

type Model struct {
	Name   string
	Fields []Field
}

type Field struct {
	Name       string
	Type       string
	Attributes []Attribute
}

// Attribute returns the named attribute of the field, if present.
func (f Field) Attribute(name string) (Attribute, bool) {
	for _, a := range f.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

type Attribute struct {
	Name  string
	Value string
}

type Schema struct {
	Models []Model
}

var (
	modelRegex = regexp.MustCompile(`^model\s+(\w+)\s*=?\s*\{`)
	fieldRegex = regexp.MustCompile(`^\s*(\w+)\s+(\w+)(.*)`)
	attrRegex  = regexp.MustCompile(`@(\w+)(?:\(((?:[^()]|\([^()]*\))*)\))?`)
)

func ParseRaftFile(path string) (*Schema, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open .raft file: %w", err)
	}
	defer file.Close()

	schema, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return schema, nil
}

// Parse reads model blocks of the form
//
//	model User = {
//	  id    Int    @id
//	  email String @unique
//	}
func Parse(r io.Reader) (*Schema, error) {
	schema := &Schema{}
	scanner := bufio.NewScanner(r)

	var currentModel *Model
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if i := strings.Index(line, "//"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}

		if matches := modelRegex.FindStringSubmatch(line); matches != nil {
			if currentModel != nil {
				return nil, fmt.Errorf("line %d: model %s opened before %s was closed", lineNo, matches[1], currentModel.Name)
			}
			currentModel = &Model{Name: matches[1]}
			continue
		}

		if line == "}" {
			if currentModel == nil {
				return nil, fmt.Errorf("line %d: unexpected }", lineNo)
			}
			schema.Models = append(schema.Models, *currentModel)
			currentModel = nil
			continue
		}

		if currentModel == nil {
			return nil, fmt.Errorf("line %d: field outside of a model: %s", lineNo, line)
		}
		matches := fieldRegex.FindStringSubmatch(line)
		if matches == nil {
			return nil, fmt.Errorf("line %d: invalid field definition: %s", lineNo, line)
		}
		currentModel.Fields = append(currentModel.Fields, Field{
			Name:       matches[1],
			Type:       matches[2],
			Attributes: parseAttributes(strings.TrimSpace(matches[3])),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	if currentModel != nil {
		return nil, fmt.Errorf("model %s is not closed", currentModel.Name)
	}

	return schema, nil
}

func parseAttributes(attrStr string) []Attribute {
	var attrs []Attribute

	for _, match := range attrRegex.FindAllStringSubmatch(attrStr, -1) {
		attrs = append(attrs, Attribute{Name: match[1], Value: strings.TrimSpace(match[2])})
	}

	return attrs
}
