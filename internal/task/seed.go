/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package task

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout accepted by LoadSeedFile:
//
//	tasks:
//	  - id: "1"
//	    title: Welcome
//	    description: Say hello
type SeedFile struct {
	Tasks []SeedTask `yaml:"tasks"`
}

// SeedTask is one entry of a seed file.
type SeedTask struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Completed   bool   `yaml:"completed"`
}

// LoadSeedFile reads initial tasks from a YAML file.
func LoadSeedFile(fs afero.Fs, path string) ([]Task, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	tasks := make([]Task, 0, len(f.Tasks))
	seen := make(map[string]bool, len(f.Tasks))
	for i, st := range f.Tasks {
		title := strings.TrimSpace(st.Title)
		if title == "" {
			return nil, fmt.Errorf("seed file %s: task %d: %w", path, i+1, &ValidationError{Field: "title", Message: "Title is required"})
		}
		if st.ID != "" {
			if seen[st.ID] {
				return nil, fmt.Errorf("seed file %s: task %q: %w", path, st.ID, ErrDuplicateID)
			}
			seen[st.ID] = true
		}
		tasks = append(tasks, Task{
			ID:          st.ID,
			Title:       title,
			Description: st.Description,
			Completed:   st.Completed,
		})
	}
	return tasks, nil
}
