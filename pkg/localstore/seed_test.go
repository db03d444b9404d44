package localstore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lumen/pkg/localstore"
	"lumen/pkg/model"
)

const sampleSeed = `project: demo
events:
  - name: bug
    description: wrong output
  - name: positive
tasks:
  - session: s1
    input: "what is 2+2"
    output: "4"
    flag: success
    created_at: 2026-08-30T09:00:00Z
  - session: s1
    input: "what is 3+3"
    output: "7"
    flag: failure
    events: [bug]
    created_at: 2026-08-30T10:00:00Z
  - input: "hello"
    output: "hi there"
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSeed(t *testing.T) {
	seed, err := localstore.LoadSeed(writeSeed(t, sampleSeed))
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if seed.Project != "demo" || len(seed.Events) != 2 || len(seed.Tasks) != 3 {
		t.Errorf("seed = %+v", seed)
	}
}

func TestLoadSeedRequiresProject(t *testing.T) {
	_, err := localstore.LoadSeed(writeSeed(t, "events:\n  - name: bug\n"))
	var validation *model.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("seed without project = %v, want ValidationError", err)
	}
}

func TestApplySeed(t *testing.T) {
	s := openTestStore(t)
	seed, err := localstore.LoadSeed(writeSeed(t, sampleSeed))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := s.Apply(ctx, seed); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	p, err := s.Project(ctx, "demo")
	if err != nil {
		t.Fatal(err)
	}
	if !p.HasEvent("bug") || !p.HasEvent("positive") {
		t.Errorf("vocabulary = %v", p.EventNames())
	}

	tasks, err := s.Tasks(ctx, "demo")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(tasks))
	}
	var tagged *model.Task
	for i := range tasks {
		if tasks[i].HasEvent("bug") {
			tagged = &tasks[i]
		}
	}
	if tagged == nil {
		t.Fatal("no task carries the seeded bug event")
	}
	if tagged.Flag != model.FlagFailure {
		t.Errorf("tagged task flag = %q, want failure", tagged.Flag)
	}
	if name, ok := tagged.Events[0].Source.Detector(); !ok || name != "seed" {
		t.Errorf("seeded event source = %v", tagged.Events[0].Source)
	}
}

func TestApplySeedRejectsUnknownEvent(t *testing.T) {
	s := openTestStore(t)
	seed := &localstore.SeedFile{
		Project: "demo",
		Events:  []localstore.SeedEvent{{Name: "bug"}},
		Tasks:   []localstore.SeedTask{{Input: "x", Events: []string{"hallucination"}}},
	}
	err := s.Apply(context.Background(), seed)
	var validation *model.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("unknown seed event = %v, want ValidationError", err)
	}

	// Validation happens before any write.
	if _, err := s.Project(context.Background(), "demo"); err == nil {
		t.Error("rejected seed must not create the project")
	}
}
