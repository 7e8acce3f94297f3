package cli

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
	"github.com/custodia-labs/ocm-extractor/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change settings",
	Long: `Settings are stored in config.toml in the configuration directory.
Unset keys fall back to their defaults.`,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every setting and where its value comes from",
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the effective value of a setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a stored setting, restoring its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

// intKeys are stored as integers.
var intKeys = map[string]bool{
	services.KeyPerDirectoryCap: true,
	services.KeyMergeWorkers:    true,
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	settings, err := app.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	values := settingValues(settings)

	cmd.Printf("# %s\n", app.Config.Path())
	for _, key := range services.SettingKeys {
		source := "default"
		if _, ok := app.Config.Get(key); ok {
			source = "set"
		}
		cmd.Printf("%-26s = %-50s (%s)\n", key, values[key], source)
	}

	if err := app.Settings.Validate(); err != nil {
		cmd.Printf("\nWarning: %v\n", err)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if err := checkKey(key); err != nil {
		return err
	}

	settings, err := app.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	cmd.Println(settingValues(settings)[key])
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	if err := checkKey(key); err != nil {
		return err
	}

	var value any = raw
	if intKeys[key] {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		value = n
	}

	previous, hadPrevious := app.Config.Get(key)
	if err := app.Config.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := app.Settings.Validate(); err != nil {
		if hadPrevious {
			_ = app.Config.Set(key, previous)
		} else {
			_ = app.Config.Delete(key)
		}
		return err
	}
	if err := app.Config.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	cmd.Printf("%s = %v\n", key, value)
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	key := args[0]
	if err := checkKey(key); err != nil {
		return err
	}
	if err := app.Config.Delete(key); err != nil {
		return fmt.Errorf("unset %s: %w", key, err)
	}
	if err := app.Config.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	cmd.Printf("%s restored to default\n", key)
	return nil
}

func checkKey(key string) error {
	if !slices.Contains(services.SettingKeys, key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return nil
}

func settingValues(s *domain.AppSettings) map[string]string {
	return map[string]string{
		services.KeyDataDir:         s.DataDir,
		services.KeyMirrorRoot:      s.Mirror.Root,
		services.KeyMirrorRemote:    s.Mirror.RemoteURL,
		services.KeyMirrorSparse:    s.Mirror.SparsePath,
		services.KeyGitMinVersion:   s.Mirror.MinToolVersion,
		services.KeyPerDirectoryCap: strconv.Itoa(s.Extract.PerDirectoryCap),
		services.KeyMergeWorkers:    strconv.Itoa(s.Extract.Workers),
		services.KeyFRLandingURL:    s.France.LandingURL,
		services.KeyFRLinkPrefix:    s.France.LinkPrefix,
		services.KeyFRFilename:      s.France.Filename,
	}
}
