package rack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go-omen/config"
)

// saveLayout is the timestamp prefix of every save file.
const saveLayout = "2006-01-02_15-04-05"

// SaveInfo represents a saved rack file (for listing)
type SaveInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// ProjectsDir returns the projects directory path
func ProjectsDir() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "projects"), nil
}

// ProjectDir returns the path to a specific project
func ProjectDir(projectName string) (string, error) {
	base, err := ProjectsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, sanitizeFilename(projectName)), nil
}

// ListProjects returns all project folder names
func ListProjects() ([]string, error) {
	dir, err := ProjectsDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}

	sort.Strings(projects)
	return projects, nil
}

// ListSaves returns timestamped saves for a project, newest first
func ListSaves(projectName string) ([]SaveInfo, error) {
	dir, err := ProjectDir(projectName)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, err
	}

	var saves []SaveInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		// 2024-01-15_14-30-00.json or 2024-01-15_14-30-00_name.json
		base := strings.TrimSuffix(name, ".json")
		if len(base) < len(saveLayout) {
			continue
		}
		ts, err := time.ParseInLocation(saveLayout, base[:len(saveLayout)], time.Local)
		if err != nil {
			continue
		}

		saveName := ""
		if len(base) > len(saveLayout)+1 && base[len(saveLayout)] == '_' {
			saveName = base[len(saveLayout)+1:]
		}

		saves = append(saves, SaveInfo{Filename: name, Name: saveName, Timestamp: ts})
	}

	sort.Slice(saves, func(i, j int) bool {
		if saves[i].Timestamp.Equal(saves[j].Timestamp) {
			return saves[i].Filename > saves[j].Filename
		}
		return saves[i].Timestamp.After(saves[j].Timestamp)
	})

	return saves, nil
}

// SaveProject writes st into the project folder under a timestamped name
// and returns the file name.
func SaveProject(projectName, saveName string, st *State) (string, error) {
	if projectName == "" {
		projectName = "untitled"
	}

	dir, err := ProjectDir(projectName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create project %s: %w", projectName, err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return "", err
	}

	filename := time.Now().Format(saveLayout)
	if saveName != "" {
		filename += "_" + sanitizeFilename(saveName)
	}
	filename += ".json"

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		return "", fmt.Errorf("write save: %w", err)
	}
	return filename, nil
}

// LoadProject reads a specific save (or the most recent if filename is
// empty).
func LoadProject(projectName, filename string) (*State, error) {
	dir, err := ProjectDir(projectName)
	if err != nil {
		return nil, err
	}

	if filename == "" {
		saves, err := ListSaves(projectName)
		if err != nil || len(saves) == 0 {
			return nil, fmt.Errorf("no saves found in project %s", projectName)
		}
		filename = saves[0].Filename
	}

	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return nil, err
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return &st, nil
}

// DeleteSave deletes a specific save file
func DeleteSave(projectName, filename string) error {
	dir, err := ProjectDir(projectName)
	if err != nil {
		return err
	}
	return os.Remove(filepath.Join(dir, filepath.Base(filename)))
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	r := strings.NewReplacer(
		" ", "-", "/", "-", "\\", "-", ":", "-",
		"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
	)
	return r.Replace(name)
}
