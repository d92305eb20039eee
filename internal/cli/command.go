package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/grunwald/internal"
	"codeberg.org/snonux/grunwald/internal/config"
)

// CreateRootCommand creates the root cobra command with all subcommands
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "grunwald",
		Short: "German word lookup backed by Wiktionary",
		Long: `grunwald looks up German words on Wiktionary and keeps the ones
you save in a local SQLite database.

Words already in the database are served from it; everything else is
fetched from the dictionary.

Examples:
  grunwald search Hund --save     # Look up "dog" and store it
  grunwald list                   # List stored words
  grunwald image Hund -o hund.png # Write the picture of a stored noun
  grunwald import words.txt       # Look up and store every listed word
  grunwald export -o words.csv    # Write stored words as Anki import file`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newSearchCommand(flags),
		newListCommand(),
		newRemoveCommand(),
		newImageCommand(flags),
		newImportCommand(),
		newResetCommand(),
		newArchiveCommand(),
		newExportCommand(flags),
	)
	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.grunwald.yaml)")
	cmd.PersistentFlags().StringVar(&flags.DBPath, "db", "", "database file (default is $HOME/.local/state/grunwald/grunwald.sqlite)")
	cmd.PersistentFlags().StringVar(&flags.Language, "language", "", "language section to read (default German)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("database.path", cmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("dictionary.language", cmd.PersistentFlags().Lookup("language"))
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
}

func newSearchCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search WORD",
		Short: "Look up a word in the database or the dictionary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, flags, args[0])
		},
	}
	cmd.Flags().BoolVarP(&flags.Save, "save", "s", false, "Store the word in the database")
	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd)
		},
	}
}

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove WORD",
		Short: "Remove a stored word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, args[0])
		},
	}
}

func newImageCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image WORD",
		Short: "Write the picture of a noun as PNG",
		Long: `Write the picture of a noun as PNG.

Words without a picture, and pictures that cannot be loaded, produce a
plain placeholder of the requested size.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImage(cmd, flags, args[0])
		},
	}
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Output file (default is WORD.png)")
	cmd.Flags().IntVar(&flags.Width, "width", 0, "Image width (default from config)")
	cmd.Flags().IntVar(&flags.Height, "height", 0, "Image height (default from config)")
	return cmd
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Look up and store every word listed in a file",
		Long: `Look up and store every word listed in a file.

The file holds one word per line. Blank lines and lines starting with '#'
are ignored. A failing word does not stop the import.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0])
		},
	}
}

func newResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete all stored words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd)
		},
	}
}

func newArchiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Move the database into a timestamped archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchive(cmd)
		},
	}
}

func newExportCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored words as an Anki CSV import file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.ExportFile, "output", "o", "anki_import.csv", "Output CSV file")
	cmd.Flags().StringVar(&flags.MediaDir, "media", "", "Folder for pictures (default is <output>_media)")
	return cmd
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".grunwald" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".grunwald")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
