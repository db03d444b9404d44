package localstore

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"lumen/pkg/model"
)

// SeedFile is the YAML shape accepted by `lumen init --seed`: a project
// vocabulary plus optional fixture tasks.
type SeedFile struct {
	Project string      `yaml:"project"`
	Events  []SeedEvent `yaml:"events"`
	Tasks   []SeedTask  `yaml:"tasks"`
}

// SeedEvent is one vocabulary entry.
type SeedEvent struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// SeedTask is one fixture interaction. CreatedAt is RFC3339; empty means now.
type SeedTask struct {
	Session   string   `yaml:"session"`
	Input     string   `yaml:"input"`
	Output    string   `yaml:"output"`
	Flag      string   `yaml:"flag"`
	Events    []string `yaml:"events"`
	CreatedAt string   `yaml:"created_at"`
}

// LoadSeed parses a seed file.
func LoadSeed(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if seed.Project == "" {
		return nil, &model.ValidationError{Field: "project", Value: "", Reason: "seed file must name a project"}
	}
	return &seed, nil
}

// Apply writes the seed into the store: the project, its vocabulary, then
// the fixture tasks with their events. Event names are validated against the
// seed vocabulary before anything is written.
func (s *Store) Apply(ctx context.Context, seed *SeedFile) error {
	project := model.Project{ID: seed.Project}
	for _, ev := range seed.Events {
		project.DefineEvent(model.EventDefinition{Name: ev.Name, Description: ev.Description})
	}
	for _, st := range seed.Tasks {
		for _, name := range st.Events {
			if !project.HasEvent(name) {
				return &model.ValidationError{Field: "event_name", Value: name, Reason: "not in seed vocabulary"}
			}
		}
	}

	if err := s.CreateProject(ctx, project); err != nil {
		return err
	}
	for _, st := range seed.Tasks {
		createdAt := time.Now().Unix()
		if st.CreatedAt != "" {
			t, err := time.Parse(time.RFC3339, st.CreatedAt)
			if err != nil {
				return fmt.Errorf("parse created_at %q: %w", st.CreatedAt, err)
			}
			createdAt = t.Unix()
		}
		flag := model.Flag(st.Flag)
		if !flag.Valid() {
			return &model.ValidationError{Field: "flag", Value: st.Flag, Reason: "must be success, failure or empty"}
		}
		task := model.Task{
			ProjectID: seed.Project,
			SessionID: st.Session,
			CreatedAt: createdAt,
			Input:     st.Input,
			Output:    st.Output,
			Flag:      flag,
		}
		for _, name := range st.Events {
			task.Events = append(task.Events, model.Event{
				EventName: name,
				Source:    model.DetectorSource("seed"),
				CreatedAt: createdAt,
			})
		}
		if err := s.InsertTask(ctx, task); err != nil {
			return err
		}
	}
	return nil
}
