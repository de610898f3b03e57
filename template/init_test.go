package template

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Lumos-Labs-HQ/itrunner/internal/config"
	"github.com/Lumos-Labs-HQ/itrunner/internal/schema"
)

func TestGetConfig(t *testing.T) {
	content, err := NewProjectTemplate(MySQL).GetConfig()
	if err != nil {
		t.Fatal(err)
	}

	var cfg config.Config
	if err := json.Unmarshal([]byte(content), &cfg); err != nil {
		t.Fatalf("config is not valid JSON: %v", err)
	}
	if cfg.Database.Provider != "mysql" || cfg.Schema.Path != "db/schema.yaml" || !cfg.Gen.Runner {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestGetSchemaParses(t *testing.T) {
	models, err := schema.ParseModels([]byte(NewProjectTemplate(SQLite).GetSchema()))
	if err != nil {
		t.Fatalf("starter schema does not parse: %v", err)
	}
	if len(models) != 2 || models[1].Fields[1].Relation.Target != "User" {
		t.Errorf("unexpected starter models: %+v", models)
	}
}

func TestGetEnvTemplate(t *testing.T) {
	env := NewProjectTemplate(PostgreSQL).GetEnvTemplate()
	if !strings.HasPrefix(env, "DATABASE_URL=postgres://") {
		t.Errorf("env template = %q", env)
	}
}

func TestValidateDatabaseType(t *testing.T) {
	if ValidateDatabaseType("sqlite3") != SQLite {
		t.Error("sqlite3 should map to SQLite")
	}
	if ValidateDatabaseType("oracle") != PostgreSQL {
		t.Error("unknown types fall back to PostgreSQL")
	}
}
