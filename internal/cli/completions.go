package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgbulk/internal/config"
	"github.com/vvka-141/pgbulk/internal/schema"
)

// sslModes contains valid PostgreSQL SSL modes for shell completion.
var sslModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

var (
	authMethods   = []string{"standard", "aws", "google", "azure"}
	outputFormats = []string{"text", "json"}
)

func filterPrefix(candidates []string, toComplete string) []string {
	var matches []string
	for _, c := range candidates {
		if strings.HasPrefix(c, toComplete) {
			matches = append(matches, c)
		}
	}
	return matches
}

// completeSSLModes provides shell completion for SSL mode flag values.
func completeSSLModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterPrefix(sslModes, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeAuthMethods(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterPrefix(authMethods, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeOutputFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterPrefix(outputFormats, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func completeLogFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterPrefix(outputFormats, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeSchemaVariants completes the positional variant of `pgbulk schema`.
func completeSchemaVariants(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return filterPrefix(schema.Variants(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeSchemaFlag completes --schema, which may follow positional args.
func completeSchemaFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterPrefix(schema.Variants(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeTableNames offers the tables of the project named by the first argument.
func completeTableNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	projectCfg, err := config.Load(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	catalog, err := schema.FromProject(projectCfg)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return filterPrefix(catalog.TableNames(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeDirectories provides shell completion for directory paths.
func completeDirectories(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	// Let the shell handle directory completion
	return nil, cobra.ShellCompDirectiveFilterDirs
}
