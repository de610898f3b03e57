package raft

import (
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/itrunner/internal/types"
)

// Descriptors converts parsed models into model descriptors. Tables and
// columns use the snake_case form of the declared names, matching the DDL
// the raft toolchain emits.
//
// Supported attributes: @id, @optional, @default(...), @unique and
// @relation(Target.field).
func (s *Schema) Descriptors() ([]types.ModelDescriptor, error) {
	descs := make([]types.ModelDescriptor, 0, len(s.Models))

	for _, model := range s.Models {
		desc := types.ModelDescriptor{
			Name:   model.Name,
			DBName: toSnakeCase(model.Name),
		}

		for _, field := range model.Fields {
			fd := types.FieldDescriptor{
				Name:     toSnakeCase(field.Name),
				Type:     mapType(field.Type),
				Required: true,
			}

			if _, ok := field.Attribute("id"); ok {
				fd.ID = true
				fd.AutoIncrement = fd.Type == types.FieldInt || fd.Type == types.FieldBigInt
			}
			if _, ok := field.Attribute("optional"); ok {
				fd.Required = false
			}
			if def, ok := field.Attribute("default"); ok {
				fd.Required = false
				if def.Value == "autoincrement()" {
					fd.AutoIncrement = true
				}
			}

			if rel, ok := field.Attribute("relation"); ok {
				target, column, found := strings.Cut(rel.Value, ".")
				if !found || target == "" || column == "" {
					return nil, fmt.Errorf("%s.%s: @relation expects Target.field, got %q", model.Name, field.Name, rel.Value)
				}
				fd.Relation = &types.RelationDescriptor{
					Target: target,
					To:     []string{toSnakeCase(column)},
				}
			}

			desc.Fields = append(desc.Fields, fd)
		}

		descs = append(descs, desc)
	}

	return descs, nil
}

func mapType(raftType string) string {
	switch strings.ToLower(raftType) {
	case "int", "integer":
		return types.FieldInt
	case "bigint":
		return types.FieldBigInt
	case "float", "double":
		return types.FieldFloat
	case "decimal":
		return types.FieldDecimal
	case "boolean", "bool":
		return types.FieldBoolean
	case "datetime", "timestamp", "date":
		return types.FieldDateTime
	case "json":
		return types.FieldJSON
	case "bytes":
		return types.FieldBytes
	case "uuid":
		return types.FieldUUID
	default:
		return types.FieldString
	}
}

func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
