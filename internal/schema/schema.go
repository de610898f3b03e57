package schema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Lumos-Labs-HQ/itrunner/internal/config"
	"github.com/Lumos-Labs-HQ/itrunner/internal/database"
	"github.com/Lumos-Labs-HQ/itrunner/internal/raft"
	"github.com/Lumos-Labs-HQ/itrunner/internal/types"
)

// SchemaManager reads model descriptors from a live database.
type SchemaManager struct {
	adapter database.Adapter
}

func NewSchemaManager(adapter database.Adapter) *SchemaManager {
	return &SchemaManager{adapter: adapter}
}

// Introspect maps every table of the connected database onto a model.
func (sm *SchemaManager) Introspect(ctx context.Context) ([]types.ModelDescriptor, error) {
	tables, err := sm.adapter.GetCurrentSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read database schema: %w", err)
	}
	return TablesToModels(tables), nil
}

type modelFile struct {
	Models []types.ModelDescriptor `yaml:"models"`
}

// ParseModels decodes a declarative model list. JSON documents are accepted
// as YAML. Unknown keys are rejected.
func ParseModels(data []byte) ([]types.ModelDescriptor, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file modelFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return file.Models, nil
}

// LoadFiles parses the given files of one source kind. SQL files are read as
// one script so that ALTER TABLE statements may refer to tables of an earlier
// file.
func LoadFiles(source string, files []string) ([]types.ModelDescriptor, error) {
	switch source {
	case config.SourceSQL:
		var script strings.Builder
		for _, path := range files {
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read schema file: %w", err)
			}
			script.Write(content)
			script.WriteString(";\n")
		}
		tables, err := ParseSQL(script.String())
		if err != nil {
			return nil, err
		}
		return TablesToModels(tables), nil

	case config.SourceRaft:
		var models []types.ModelDescriptor
		for _, path := range files {
			s, err := raft.ParseRaftFile(path)
			if err != nil {
				return nil, err
			}
			descs, err := s.Descriptors()
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			models = append(models, descs...)
		}
		return models, nil

	case config.SourceYAML, config.SourceJSON:
		var models []types.ModelDescriptor
		for _, path := range files {
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read schema file: %w", err)
			}
			descs, err := ParseModels(content)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
			models = append(models, descs...)
		}
		return models, nil

	default:
		return nil, fmt.Errorf("unsupported schema source: %s", source)
	}
}

// Load resolves the configured schema source into model descriptors. The
// returned file list is empty for the database source.
func Load(ctx context.Context, cfg *config.Config) ([]types.ModelDescriptor, []string, error) {
	if cfg.Schema.Source != config.SourceDatabase {
		files, err := cfg.GetSchemaFiles()
		if err != nil {
			return nil, nil, err
		}
		models, err := LoadFiles(cfg.Schema.Source, files)
		return models, files, err
	}

	url, err := cfg.GetDatabaseURL()
	if err != nil {
		return nil, nil, err
	}
	adapter, err := database.NewAdapter(cfg.Database.Provider, cfg.Database.Driver)
	if err != nil {
		return nil, nil, err
	}
	if err := adapter.Connect(ctx, url); err != nil {
		return nil, nil, err
	}
	defer adapter.Close()

	if err := adapter.Ping(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	models, err := NewSchemaManager(adapter).Introspect(ctx)
	return models, nil, err
}
