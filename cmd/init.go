package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pocketfuldev/artag/internal/config"
)

var (
	initSearchDepth int
	initForce       bool
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a registry in the current repository",
	Long: `Initialize a registry in the current repository.

This writes a default configuration file and, unless the repository
already has one, seeds an artifacts.yaml index by walking the working
tree for directories that look like artifacts (a Dockerfile,
requirements.txt, go.mod, or similar marker file).`,
	Example: `  artag init
  artag init --depth 3
  artag init --force`,
	Run: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().IntVarP(&initSearchDepth, "depth", "d", 2, "maximum search depth for artifact discovery")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing configuration")
}

func runInit(c *cobra.Command, args []string) {
	if !initForce && configFileExists() {
		fmt.Printf("configuration already exists at %s; use --force to overwrite\n", config.File)
		return
	}

	if err := writeDefaultConfig(); err != nil {
		dieOnError(fmt.Errorf("writing %s: %w", config.File, err))
	}
	fmt.Printf("wrote %s\n", config.File)

	candidates := discoverArtifactDirs(repoPath, initSearchDepth)
	if len(candidates) == 0 {
		fmt.Println("no candidate artifact directories found")
		return
	}

	fmt.Printf("discovered %d candidate artifact directories:\n", len(candidates))
	for _, c := range candidates {
		fmt.Printf("  %s (%s)\n", c.Name, c.Path)
	}

	if err := writeIndexIfAbsent(repoPath, candidates); err != nil {
		dieOnError(fmt.Errorf("writing artifacts.yaml: %w", err))
	}
}

func configFileExists() bool {
	_, err := os.Stat(filepath.Join(repoPath, config.File))
	return err == nil
}

func writeDefaultConfig() error {
	contents := `# artag configuration; see internal/config for recognized keys.
version_convention: numbers
stages:
  - dev
  - staging
  - prod
sort: by_time
kanban: false
multi_version_stage: false
`
	return os.WriteFile(filepath.Join(repoPath, config.File), []byte(contents), 0o644)
}

type artifactCandidate struct {
	Name string
	Path string
	Type string
}

var artifactMarkers = map[string]string{
	"Dockerfile":       "container",
	"go.mod":           "golang",
	"package.json":     "nodejs",
	"requirements.txt": "python",
	"Cargo.toml":       "rust",
	"pom.xml":          "java",
	"model.yaml":       "model",
	"model.yml":        "model",
}

var skipDirNames = map[string]bool{
	".git": true, "node_modules": true, "vendor": true, "target": true,
	"dist": true, "build": true, "__pycache__": true, ".venv": true,
}

// discoverArtifactDirs walks root looking for directories containing an
// artifact marker file, bounded by depth.
func discoverArtifactDirs(root string, depth int) []artifactCandidate {
	var out []artifactCandidate
	seen := make(map[string]bool)

	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() != filepath.Base(root) && skipDirNames[d.Name()] {
			return filepath.SkipDir
		}
		rel, _ := filepath.Rel(root, path)
		if rel != "." && strings.Count(rel, string(filepath.Separator))+1 > depth {
			return filepath.SkipDir
		}

		for marker, kind := range artifactMarkers {
			if _, err := os.Stat(filepath.Join(path, marker)); err == nil {
				if path == root || seen[path] {
					continue
				}
				seen[path] = true
				out = append(out, artifactCandidate{
					Name: filepath.Base(path),
					Path: rel,
					Type: kind,
				})
				break
			}
		}
		return nil
	})

	return out
}

func writeIndexIfAbsent(root string, candidates []artifactCandidate) error {
	indexPath := filepath.Join(root, "artifacts.yaml")
	if _, err := os.Stat(indexPath); err == nil {
		fmt.Println("artifacts.yaml already exists; leaving it untouched")
		return nil
	}

	entries := make(map[string]map[string]string, len(candidates))
	for _, c := range candidates {
		entries[c.Name] = map[string]string{"type": c.Type, "path": c.Path}
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return err
	}
	return os.WriteFile(indexPath, data, 0o644)
}
