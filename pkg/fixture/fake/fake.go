// Package fake produces plausible field values for seeders.
package fake

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Generator is safe for concurrent use. The same seed yields the same
// sequence of values.
type Generator struct {
	mu      sync.Mutex
	rand    *rand.Rand
	counter int
}

func New(seed int64) *Generator {
	return &Generator{rand: rand.New(rand.NewSource(seed))}
}

// Value returns a value for a field, looking at the field name first and
// falling back to its generator type (String, Int, DateTime, ...).
func (g *Generator) Value(fieldName, fieldType string) any {
	g.mu.Lock()
	defer g.mu.Unlock()

	if fieldType == "String" || fieldType == "" {
		if v, ok := g.byName(fieldName); ok {
			return v
		}
	}
	return g.byType(fieldType)
}

func (g *Generator) byName(fieldName string) (string, bool) {
	name := strings.ToLower(fieldName)
	switch {
	case strings.Contains(name, "email"):
		return g.email(), true
	case strings.Contains(name, "name") && !strings.Contains(name, "file"):
		return g.name(), true
	case strings.Contains(name, "title"):
		return g.title(), true
	case strings.Contains(name, "description"), strings.Contains(name, "content"), strings.Contains(name, "body"):
		return g.sentence(), true
	case strings.Contains(name, "url"), strings.Contains(name, "link"):
		return fmt.Sprintf("https://example.com/page/%d", g.rand.Intn(1000)), true
	case strings.Contains(name, "phone"):
		return fmt.Sprintf("+1-%03d-%03d-%04d", g.rand.Intn(1000), g.rand.Intn(1000), g.rand.Intn(10000)), true
	case strings.Contains(name, "address"):
		return fmt.Sprintf("%d Main Street, City, State %05d", g.rand.Intn(9999)+1, g.rand.Intn(100000)), true
	}
	return "", false
}

func (g *Generator) byType(fieldType string) any {
	switch fieldType {
	case "Int", "BigInt":
		return int64(g.rand.Intn(1000000) + 1)
	case "Float", "Decimal":
		return float64(g.rand.Intn(1000000)) / 100
	case "Boolean":
		return g.rand.Intn(2) == 1
	case "DateTime":
		return epoch.Add(time.Duration(g.rand.Intn(365*24)) * time.Hour)
	case "Json":
		return map[string]any{"generated": true}
	case "Bytes":
		b := make([]byte, 8)
		g.rand.Read(b)
		return b
	case "Uuid":
		id, err := uuid.NewRandomFromReader(g.rand)
		if err != nil {
			return uuid.NewString()
		}
		return id.String()
	default:
		return g.word()
	}
}

func (g *Generator) name() string {
	firstNames := []string{"John", "Jane", "Alice", "Bob", "Charlie", "Diana", "Eve", "Frank", "Grace", "Henry"}
	lastNames := []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez"}
	return firstNames[g.rand.Intn(len(firstNames))] + " " + lastNames[g.rand.Intn(len(lastNames))]
}

func (g *Generator) email() string {
	g.counter++
	domains := []string{"example.com", "test.com", "demo.com", "mail.com"}
	return fmt.Sprintf("user%d_%d@%s", g.counter, g.rand.Intn(100000), domains[g.rand.Intn(len(domains))])
}

func (g *Generator) title() string {
	titles := []string{
		"Getting Started with Go",
		"Understanding Databases",
		"Introduction to APIs",
		"Modern Software Architecture",
		"Data Structures and Algorithms",
	}
	return titles[g.rand.Intn(len(titles))]
}

func (g *Generator) sentence() string {
	sentences := []string{
		"This is a sample text generated for testing purposes.",
		"The quick brown fox jumps over the lazy dog.",
		"Database design is crucial for application performance.",
	}
	return sentences[g.rand.Intn(len(sentences))]
}

func (g *Generator) word() string {
	g.counter++
	words := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta"}
	return fmt.Sprintf("%s-%d", words[g.rand.Intn(len(words))], g.counter)
}
