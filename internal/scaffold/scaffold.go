package scaffold

import (
	"bytes"
	"embed"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/vvka-141/pgbulk/internal/config"
	"github.com/vvka-141/pgbulk/internal/schema"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

//go:embed templates/pgbulk.yaml.tmpl
var templatesFS embed.FS

var projectTemplate = template.Must(template.ParseFS(templatesFS, "templates/pgbulk.yaml.tmpl"))

// DataDir is the data directory of a scaffolded project.
const DataDir = "data"

// Options describe the project to create.
type Options struct {
	// Schema is the built-in variant whose tables get CSV templates.
	Schema string

	Host     string
	Port     int
	Username string
	Database string
}

type templateData struct {
	Name      string
	Schema    string
	DataDir   string
	Delimiter string
	Host      string
	Port      int
	Username  string
	Database  string
	Loads     []pgbulk.TableLoad
}

// Scaffolder creates new pgbulk projects.
type Scaffolder struct {
	logger pgbulk.Logger
}

func NewScaffolder(logger pgbulk.Logger) *Scaffolder {
	return &Scaffolder{logger: logger}
}

// CreateProject writes pgbulk.yaml and a header-only CSV per table of the
// variant into targetPath, which must be empty or absent.
func (s *Scaffolder) CreateProject(targetPath string, opts Options) error {
	catalog, err := schema.Builtin(opts.Schema)
	if err != nil {
		return err
	}

	isEmpty, err := isDirectoryEmpty(targetPath)
	if err != nil {
		return fmt.Errorf("failed to check target directory: %w", err)
	}
	if !isEmpty {
		return fmt.Errorf("target directory '%s' is not empty\n\npgbulk init requires an empty directory to avoid overwriting existing files: %w", targetPath, pgbulk.ErrInvalidConfig)
	}

	dataPath := filepath.Join(targetPath, DataDir)
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	data := newTemplateData(targetPath, catalog, opts)
	var cfg bytes.Buffer
	if err := projectTemplate.Execute(&cfg, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", config.ConfigFileName, err)
	}
	s.logger.Verbose("Creating file: %s", config.ConfigFileName)
	if err := os.WriteFile(filepath.Join(targetPath, config.ConfigFileName), cfg.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", config.ConfigFileName, err)
	}

	delim, _ := utf8.DecodeRuneInString(catalog.DefaultDelimiter())
	for _, t := range catalog.Tables() {
		name := t.Name + pgbulk.DefaultFileExtension
		s.logger.Verbose("Creating file: %s", filepath.Join(DataDir, name))
		if err := writeHeader(filepath.Join(dataPath, name), t.ColumnNames(), delim); err != nil {
			return err
		}
	}
	return nil
}

func newTemplateData(targetPath string, catalog *schema.Catalog, opts Options) templateData {
	data := templateData{
		Name:      filepath.Base(filepath.Clean(targetPath)),
		Schema:    catalog.Name(),
		DataDir:   DataDir,
		Delimiter: catalog.DefaultDelimiter(),
		Host:      opts.Host,
		Port:      opts.Port,
		Username:  opts.Username,
		Database:  opts.Database,
		Loads:     schema.DefaultLoads(catalog),
	}
	if data.Host == "" {
		data.Host = "localhost"
	}
	if data.Port == 0 {
		data.Port = pgbulk.DefaultPort
	}
	if data.Username == "" {
		data.Username = "postgres"
	}
	if data.Database == "" {
		data.Database = strings.ReplaceAll(strings.ToLower(data.Name), "-", "_")
	}
	return data
}

func writeHeader(path string, columns []string, delim rune) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = delim
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// isDirectoryEmpty reports true for a missing or empty directory.
func isDirectoryEmpty(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check directory: %w", err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("path exists but is not a directory")
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return false, fmt.Errorf("failed to read directory: %w", err)
	}
	return len(entries) == 0, nil
}

// BuildFileTree renders rootPath as an indented tree for the init summary.
func BuildFileTree(rootPath string) (string, error) {
	var sb strings.Builder

	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		absPath = rootPath
	}
	sb.WriteString(absPath + "/\n")

	err = filepath.WalkDir(rootPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == rootPath {
			return nil
		}

		relPath, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}
		depth := strings.Count(relPath, string(os.PathSeparator))

		siblings, err := os.ReadDir(filepath.Dir(path))
		if err != nil {
			return err
		}
		isLast := siblings[len(siblings)-1].Name() == d.Name()

		indent := strings.Repeat("│   ", depth)
		branch := "├── "
		if isLast {
			branch = "└── "
			if depth > 0 {
				indent = indent[:len(indent)-len("│   ")] + "    "
			}
		}

		name := d.Name()
		if d.IsDir() {
			name += "/"
		}
		sb.WriteString(indent + branch + name + "\n")
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to build file tree: %w", err)
	}
	return sb.String(), nil
}
