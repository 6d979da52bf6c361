package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/pgbulk/internal/config"
	"github.com/vvka-141/pgbulk/internal/schema"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// loadProjectConfig loads .env files and the project configuration.
// Returns nil config if pgbulk.yaml does not exist (not an error).
func loadProjectConfig(sourcePath string) (*config.ProjectConfig, error) {
	// godotenv never overrides variables already set, so the project's
	// .env only fills gaps left by the working directory's.
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(sourcePath, ".env"))

	projectCfg, err := config.Load(sourcePath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load pgbulk.yaml: %w", err)
	}
	return projectCfg, nil
}

// requireProjectConfig is loadProjectConfig for commands that cannot run
// without a pgbulk.yaml.
func requireProjectConfig(sourcePath string) (*config.ProjectConfig, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: project directory %s: %w", pgbulk.ErrInvalidConfig, sourcePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", pgbulk.ErrInvalidConfig, sourcePath)
	}

	projectCfg, err := loadProjectConfig(sourcePath)
	if err != nil {
		return nil, err
	}
	if projectCfg == nil {
		return nil, fmt.Errorf("%w in %s\n\nTip: create one with: pgbulk init %s", config.ErrConfigNotFound, sourcePath, sourcePath)
	}
	if err := projectCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pgbulk.yaml: %w", err)
	}
	return projectCfg, nil
}

// projectPlan is what a project directory asks to load, independent of any server.
type projectPlan struct {
	Catalog   *schema.Catalog
	Loads     []pgbulk.TableLoad
	DataDir   string
	Delimiter string
}

// planProject builds the catalog and the ordered load list for a project,
// restricted to tables when non-empty.
func planProject(sourcePath string, projectCfg *config.ProjectConfig, tables []string) (*projectPlan, error) {
	catalog, err := schema.FromProject(projectCfg)
	if err != nil {
		return nil, err
	}

	loads, err := projectCfg.TableLoads()
	if err != nil {
		return nil, err
	}
	if len(loads) == 0 {
		loads = schema.DefaultLoads(catalog)
	}

	if len(tables) > 0 {
		subset, err := catalog.Subset(tables)
		if err != nil {
			return nil, err
		}
		loads = filterLoads(loads, subset)
		if len(loads) == 0 {
			return nil, fmt.Errorf("%w: no configured load matches --table %v", pgbulk.ErrInvalidConfig, tables)
		}
	}

	delimiter := catalog.DefaultDelimiter()
	if projectCfg.Delimiter != "" {
		if delimiter, err = config.NormalizeDelimiter(projectCfg.Delimiter); err != nil {
			return nil, err
		}
	}

	return &projectPlan{
		Catalog:   catalog,
		Loads:     loads,
		DataDir:   projectCfg.ResolveDataDir(sourcePath),
		Delimiter: delimiter,
	}, nil
}

// filterLoads keeps the loads whose table is in subset, preserving order.
func filterLoads(loads []pgbulk.TableLoad, subset pgbulk.Catalog) []pgbulk.TableLoad {
	var out []pgbulk.TableLoad
	for _, l := range loads {
		if _, err := subset.Lookup(l.Table); err == nil {
			out = append(out, l)
		}
	}
	return out
}

// resolveDuration returns the flag value, or the pgbulk.yaml value when the
// flag was not set on the command line.
func resolveDuration(cmd *cobra.Command, flagName string, flagValue time.Duration, fromConfig func() (time.Duration, error)) (time.Duration, error) {
	if cmd.Flags().Changed(flagName) {
		return flagValue, nil
	}
	configured, err := fromConfig()
	if err != nil {
		return 0, fmt.Errorf("invalid %s in pgbulk.yaml: %w", flagName, err)
	}
	if configured > 0 {
		return configured, nil
	}
	return flagValue, nil
}

// resolveBool returns the flag value when set, else fallback.
func resolveBool(cmd *cobra.Command, flagName string, flagValue, fallback bool) bool {
	if cmd.Flags().Changed(flagName) {
		return flagValue
	}
	return fallback
}
