package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/deepthink-labs/deepthink-engine/internal/models"
)

func TestLoadCatalogFromDir(t *testing.T) {
	// Use the actual catalog directory
	catalogDir := filepath.Join("..", "..", "catalog")

	// Check it exists
	if _, err := os.Stat(catalogDir); os.IsNotExist(err) {
		t.Skip("catalog directory not found, skipping")
	}

	loader := NewLoader()
	if err := loader.LoadFromDir(catalogDir); err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}

	all := loader.List()
	if len(all) < 10 {
		t.Errorf("expected at least 10 scenarios, got %d", len(all))
	}

	// Check the Zero-Day scenario
	breach := loader.Get("it-security-breach")
	if breach == nil {
		t.Fatal("it-security-breach scenario not found")
	}
	if breach.Name != "Zero-Day Vulnerability" {
		t.Errorf("unexpected scenario name: %s", breach.Name)
	}
	if breach.JobType != "Information Technology" {
		t.Errorf("unexpected job type: %s", breach.JobType)
	}
	if breach.Level != models.LevelSpecialist {
		t.Errorf("expected level Specialist, got %s", breach.Level)
	}
	if len(breach.Tags) != 3 {
		t.Errorf("expected 3 tags, got %d", len(breach.Tags))
	}
	if breach.HasQuestions() {
		t.Error("built-in scenarios should not carry pre-baked questions")
	}

	// Check job type filtering
	it := loader.ListByJobType("Information Technology")
	if len(it) != 3 {
		t.Errorf("expected 3 Information Technology scenarios, got %d", len(it))
	}

	jobTypes := loader.JobTypes()
	if len(jobTypes) < 5 {
		t.Errorf("expected at least 5 job types, got %d", len(jobTypes))
	}

	// Log summary
	t.Logf("Scenarios: %d across %d job types", len(all), len(jobTypes))
}

func TestLoadFromFileRejectsBadScenarios(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name string
		yaml string
	}{
		{"missing id", "name: No ID\njob_type: IT\nlevel: Newbie\n"},
		{"missing name", "id: no-name\njob_type: IT\nlevel: Newbie\n"},
		{"bad level", "id: bad-level\nname: Bad Level\njob_type: IT\nlevel: Guru\n"},
		{"wrong option count", "id: bad-q\nname: Bad Q\nlevel: Newbie\nquestions:\n  - id: 1\n    text: q\n    options: [a, b]\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, "scenario.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			loader := NewLoader()
			if err := loader.LoadFromFile(path); err == nil {
				t.Error("expected load error, got nil")
			}
		})
	}
}
