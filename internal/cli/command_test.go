package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestCreateRootCommand(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	if cmd.Use != "grunwald" {
		t.Errorf("Expected Use to be 'grunwald', got %s", cmd.Use)
	}
	if !strings.Contains(cmd.Short, "Wiktionary") {
		t.Errorf("Short description should mention Wiktionary: %s", cmd.Short)
	}

	for _, name := range []string{"config", "db", "language", "log-level"} {
		t.Run("flag_"+name, func(t *testing.T) {
			if cmd.PersistentFlags().Lookup(name) == nil {
				t.Errorf("Expected persistent flag %s to exist", name)
			}
		})
	}

	subcommands := []struct {
		name  string
		flags []string
	}{
		{"search", []string{"save"}},
		{"list", nil},
		{"remove", nil},
		{"image", []string{"output", "width", "height"}},
		{"import", nil},
		{"reset", nil},
		{"archive", nil},
		{"export", []string{"output", "media"}},
	}
	for _, tt := range subcommands {
		t.Run("command_"+tt.name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{tt.name})
			if err != nil || sub.Name() != tt.name {
				t.Fatalf("subcommand %s not found: %v", tt.name, err)
			}
			for _, f := range tt.flags {
				var flag *pflag.Flag = sub.Flags().Lookup(f)
				if flag == nil {
					t.Errorf("Expected flag %s on %s", f, tt.name)
				}
			}
		})
	}
}

func TestSubcommandArgs(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cmd := CreateRootCommand(NewFlags())
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"search", []string{}, true},
		{"search", []string{"Hund"}, false},
		{"search", []string{"Hund", "Katze"}, true},
		{"list", []string{}, false},
		{"list", []string{"Hund"}, true},
		{"import", []string{"words.txt"}, false},
	}
	for _, tt := range tests {
		sub, _, err := cmd.Find([]string{tt.name})
		if err != nil {
			t.Fatalf("Find(%s) error = %v", tt.name, err)
		}
		if err := sub.Args(sub, tt.args); (err != nil) != tt.wantErr {
			t.Errorf("%s %v: args error = %v, wantErr %v", tt.name, tt.args, err, tt.wantErr)
		}
	}
}

func TestBindFlagsToViper(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cmd := &cobra.Command{}
	setupFlags(cmd, NewFlags())

	cmd.PersistentFlags().Set("db", "/test/words.sqlite")
	cmd.PersistentFlags().Set("language", "French")
	cmd.PersistentFlags().Set("log-level", "debug")

	if got := viper.GetString("database.path"); got != "/test/words.sqlite" {
		t.Errorf("Expected database.path to be /test/words.sqlite, got %s", got)
	}
	if got := viper.GetString("dictionary.language"); got != "French" {
		t.Errorf("Expected dictionary.language to be French, got %s", got)
	}
	if got := viper.GetString("log.level"); got != "debug" {
		t.Errorf("Expected log.level to be debug, got %s", got)
	}
}

func TestInitConfig(t *testing.T) {
	defer viper.Reset()

	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantLang  string
	}{
		{
			name: "with config file",
			setupFunc: func(t *testing.T) string {
				cfgPath := filepath.Join(t.TempDir(), "grunwald.yaml")
				content := `dictionary:
  language: Dutch
database:
  path: /test/words.sqlite`
				if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
			wantLang: "Dutch",
		},
		{
			name:      "without config file",
			setupFunc: func(t *testing.T) string { return "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Setenv("HOME", t.TempDir())
			t.Setenv("GRUNWALD_LOG_FORMAT", "json")

			InitConfig(tt.setupFunc(t))

			if got := viper.GetString("dictionary.language"); got != tt.wantLang {
				t.Errorf("dictionary.language = %q, want %q", got, tt.wantLang)
			}
			if got := viper.GetString("log.format"); got != "json" {
				t.Errorf("log.format = %q, environment variable not loaded", got)
			}
		})
	}
}

func TestFlaglessCommands(t *testing.T) {
	tests := []struct {
		cmd  *cobra.Command
		use  string
		args []string
	}{
		{newListCommand(), "list", nil},
		{newRemoveCommand(), "remove WORD", []string{"Hund"}},
		{newImportCommand(), "import FILE", []string{"words.txt"}},
		{newResetCommand(), "reset", nil},
		{newArchiveCommand(), "archive", nil},
	}
	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			if tt.cmd.Use != tt.use {
				t.Errorf("Use = %q, want %q", tt.cmd.Use, tt.use)
			}
			if tt.cmd.Flags().HasFlags() {
				t.Errorf("%s defines flags of its own", tt.use)
			}
			if err := tt.cmd.Args(tt.cmd, tt.args); err != nil {
				t.Errorf("Args(%v) error = %v", tt.args, err)
			}
		})
	}
}
