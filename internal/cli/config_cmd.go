package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glint-tools/carbon/internal/config"
	"github.com/glint-tools/carbon/internal/export"
	"github.com/glint-tools/carbon/internal/ui"
)

// configKeys maps dotted config.toml keys to setters.
var configKeys = map[string]func(c *config.Config, value string) error{
	"default_project": func(c *config.Config, v string) error { c.DefaultProject = v; return nil },
	"project_dir":     func(c *config.Config, v string) error { c.ProjectDir = v; return nil },
	"state_file":      func(c *config.Config, v string) error { c.StateFile = v; return nil },
	"log_level": func(c *config.Config, v string) error {
		switch strings.ToLower(v) {
		case "debug", "info", "warn", "error", "":
			c.LogLevel = strings.ToLower(v)
			return nil
		}
		return fmt.Errorf("log_level must be one of: debug, info, warn, error")
	},
	"export.format": func(c *config.Config, v string) error {
		var f export.Format
		if v != "" {
			if err := f.Set(v); err != nil {
				return err
			}
		}
		c.Export.Format = string(f)
		return nil
	},
	"export.out_dir": func(c *config.Config, v string) error { c.Export.OutDir = v; return nil },
	"image.max_size": func(c *config.Config, v string) error {
		if v == "" {
			c.Image.MaxSize = 0
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("image.max_size must be a positive number of pixels")
		}
		c.Image.MaxSize = n
		return nil
	},
	"audit.enabled": func(c *config.Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("audit.enabled must be true or false")
		}
		c.Audit.Enabled = b
		return nil
	},
	"ui.accent":     func(c *config.Config, v string) error { c.UI.Accent = v; return nil },
	"ui.code_theme": func(c *config.Config, v string) error { c.UI.CodeTheme = v; return nil },
}

func configKeyNames() []string {
	names := make([]string, 0, len(configKeys))
	for name := range configKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func configData(c *config.Config, exists bool) map[string]any {
	return map[string]any{
		"config_path":     getConfigPath(),
		"state_path":      getStatePath(),
		"exists":          exists,
		"default_project": c.DefaultProject,
		"project_dir":     c.ProjectDir,
		"state_file":      c.StateFile,
		"log_level":       c.LogLevel,
		"export": map[string]any{
			"format":  c.Export.Format,
			"out_dir": c.Export.OutDir,
		},
		"image": map[string]any{"max_size": c.Image.MaxSize},
		"audit": map[string]any{"enabled": c.Audit.Enabled},
		"ui": map[string]any{
			"accent":     c.UI.Accent,
			"code_theme": c.UI.CodeTheme,
		},
	}
}

func configExists() bool {
	_, err := os.Stat(getConfigPath())
	return err == nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage global carbon config.toml settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	c, exists := getConfig(), configExists()
	if isJSONOutput() {
		outputSuccess(configData(c, exists), nil)
		return nil
	}

	if !exists {
		printf("Config file does not exist: %s\n", getConfigPath())
		printf("%s\n", ui.Hint("Run 'carbon config init' to create it."))
		return nil
	}
	printf("config: %s\n", getConfigPath())
	printf("state:  %s\n", getStatePath())

	values := map[string]string{
		"default_project": c.DefaultProject,
		"project_dir":     c.ProjectDir,
		"state_file":      c.StateFile,
		"log_level":       c.LogLevel,
		"export.format":   c.Export.Format,
		"export.out_dir":  c.Export.OutDir,
		"ui.accent":       c.UI.Accent,
		"ui.code_theme":   c.UI.CodeTheme,
	}
	if c.Image.MaxSize > 0 {
		values["image.max_size"] = strconv.Itoa(c.Image.MaxSize)
	}
	if c.Audit.Enabled {
		values["audit.enabled"] = "true"
	}
	for _, key := range configKeyNames() {
		if v := strings.TrimSpace(values[key]); v != "" {
			printf("%s: %s\n", key, v)
		}
	}
	return nil
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config and state file locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if isJSONOutput() {
			outputSuccess(map[string]any{
				"config_path": getConfigPath(),
				"state_path":  getStatePath(),
			}, nil)
			return nil
		}
		printf("%s\n", getConfigPath())
		printf("%s\n", getStatePath())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default global config.toml if missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		targetPath := config.ResolveConfigPath(configPath)
		_, statErr := os.Stat(targetPath)
		existed := statErr == nil
		if statErr != nil && !os.IsNotExist(statErr) {
			return handleError(ErrFileReadError, statErr, "")
		}

		createdPath, err := config.CreateDefault(targetPath)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]any{
				"config_path": createdPath,
				"created":     !existed,
			}, nil)
			return nil
		}

		if existed {
			printf("Config already exists: %s\n", createdPath)
		} else {
			printf("%s\n", ui.Successf("Created config: %s", ui.FilePath(createdPath)))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a global config.toml field",
	Long: fmt.Sprintf(`Sets a field in config.toml. An empty value clears it.

Keys: %s`, strings.Join(configKeyNames(), ", ")),
	Example: `  carbon config set export.format yaml
  carbon config set ui.accent "#7DD3FC"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := strings.ToLower(strings.TrimSpace(args[0])), strings.TrimSpace(args[1])
		set, ok := configKeys[key]
		if !ok {
			return handleErrorMsg(ErrInvalidInput, fmt.Sprintf("unknown config key %q", args[0]),
				"Keys: "+strings.Join(configKeyNames(), ", "))
		}

		c := *getConfig()
		if err := set(&c, value); err != nil {
			return handleError(ErrInvalidValue, err, "")
		}
		if err := config.SaveTo(getConfigPath(), &c); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		cfg = &c

		if isJSONOutput() {
			outputSuccess(map[string]any{"key": key, "value": value, "config_path": getConfigPath()}, nil)
			return nil
		}
		printf("%s\n", ui.Successf("Set %s in %s", key, ui.FilePath(getConfigPath())))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd, configInitCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
