package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/spoor/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

// ConfigFile is the name of the configuration file written by Initialize.
const ConfigFile = "spoor.yml"

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Initialize writes a commented default spoor.yml into dir.
// If force is true, an existing spoor.yml is replaced.
// Returns the path of the written file.
func Initialize(dir string, force bool) (string, error) {
	if force {
		if err := handleForce(dir); err != nil {
			return "", err
		}
	}

	files, err := getTemplateFiles(dir)
	if err != nil {
		return "", err
	}

	if err := writeFiles(files); err != nil {
		return "", err
	}

	path := filepath.Join(dir, ConfigFile)
	if err := validateCreatedFiles(path); err != nil {
		return "", err
	}

	return path, nil
}

// handleForce removes an existing configuration if --force was specified
func handleForce(dir string) error {
	path := filepath.Join(dir, ConfigFile)
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", ConfigFile, err)
		}
	}
	return nil
}

// getTemplateFiles reads all template files
func getTemplateFiles(dir string) ([]FileInfo, error) {
	spoorYml, err := templatesFS.ReadFile("templates/spoor.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read %s template: %w", ConfigFile, err)
	}

	return []FileInfo{{
		Path:        filepath.Join(dir, ConfigFile),
		Content:     spoorYml,
		Permissions: 0644,
	}}, nil
}

// writeFiles writes all template files to disk
func writeFiles(files []FileInfo) error {
	for _, file := range files {
		if err := os.WriteFile(file.Path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}
	return nil
}

// validateCreatedFiles checks that the written configuration loads cleanly
func validateCreatedFiles(path string) error {
	if _, err := config.Load(path); err != nil {
		return fmt.Errorf("created %s is not valid: %w", ConfigFile, err)
	}
	return nil
}
