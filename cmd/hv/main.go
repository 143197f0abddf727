package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"hv-go/internal/app"
	"hv-go/internal/config"
	"hv-go/internal/hv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to defaults when none exists.
// HV_HOME overrides the configured data directory.
func loadConfig() (*config.Config, error) {
	defaults := app.GetDefaults()

	cfg, _, err := config.ReadOrDefault(defaults["config_path"], defaults["data_dir"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if dir := defaults["data_dir"]; dir != "" && cfg.DataDir != dir {
		cfg.DataDir = dir
		cfg.LogDir = ""
	}
	return cfg, nil
}

// newApp reads the config and creates an HVApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "add", "rm").
func newApp(ctx context.Context, operation string) (*app.HVApp, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewHVApp(ctx, cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// closeApp closes a and reports a close failure unless the command already failed.
func closeApp(a *app.HVApp, err *error) {
	if cerr := a.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

var rootCmd = &cobra.Command{
	Use:          "hv",
	Short:        "HobbyVault: keep hobby files in a single local vault",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults := app.GetDefaults()

		vaultID := uuid.New().String()
		cfg := config.NewConfig(vaultID, defaults["data_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Vault ID: %s\n", vaultID)
		if cfg.DataDir != "" {
			fmt.Printf("Data Dir: %s\n", cfg.DataDir)
		}
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults := app.GetDefaults()

		cfg, found, err := config.ReadOrDefault(defaults["config_path"], defaults["data_dir"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		if found {
			fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		} else {
			fmt.Printf("No configuration at %s, showing defaults:\n\n", defaults["config_path"])
		}
		fmt.Printf("Vault ID:   %s\n", cfg.VaultID)
		fmt.Printf("App:        %s (%s)\n", cfg.AppName, cfg.AppAuthor)
		fmt.Printf("Data Dir:   %s\n", orDefault(cfg.DataDir, "(platform data directory)"))
		fmt.Printf("Log Dir:    %s\n", orDefault(cfg.LogDir, "(<data dir>/log)"))
		fmt.Printf("Document:   %s\n", cfg.Document.Type)
		fmt.Printf("Database:   %s\n", cfg.Database.Type)
		fmt.Printf("Mirror:     %s\n", cfg.Mirror.Type)
		fmt.Printf("Restore To: %s\n", orDefault(cfg.Restore.OutputDir, "(downloads directory)"))
		return nil
	},
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// add command
var addCmd = &cobra.Command{
	Use:   "add PATH",
	Short: "Add a file, or the files in a directory, to the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		recursive, _ := cmd.Flags().GetBool("recursive")
		del, _ := cmd.Flags().GetBool("delete")
		keep, _ := cmd.Flags().GetBool("keep")

		mode := hv.DeleteDefault
		switch {
		case del:
			mode = hv.DeleteOriginal
		case keep:
			mode = hv.KeepOriginal
		}

		a, err := newApp(cmd.Context(), "add")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		infos, err := a.AddPath(cmd.Context(), args[0], recursive, mode)
		for _, info := range infos {
			fmt.Printf("Added %s (%s, %d bytes)\n", info.Filename, info.Category, info.Size)
		}
		if err != nil {
			return fmt.Errorf("adding: %w", err)
		}
		return nil
	},
}

// ls command
var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List files in the vault",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "ls")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		infos := a.List()
		if len(infos) == 0 {
			fmt.Println("Vault is empty.")
			return nil
		}
		for _, info := range infos {
			fmt.Printf("%3d  %-9s  %10d  %s\n", info.Position, info.Category, info.Size, info.Filename)
		}
		return nil
	},
}

// rm command
var rmCmd = &cobra.Command{
	Use:   "rm [POSITION]",
	Short: "Remove a file from the vault by position or name",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		name, _ := cmd.Flags().GetString("name")
		if (name == "") == (len(args) == 0) {
			return fmt.Errorf("give either a POSITION or --name")
		}

		var position int
		if name == "" {
			position, err = strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[0])
			}
		}

		a, err := newApp(cmd.Context(), "rm")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		if name != "" {
			if err := a.DeleteFile(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Printf("Removed %s\n", name)
			return nil
		}

		if err := a.DeleteAt(cmd.Context(), position); err != nil {
			return err
		}
		fmt.Printf("Removed entry %d\n", position)
		return nil
	},
}

// clear command
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every file from the vault",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "clear")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		n, err := a.DeleteAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d file(s)\n", n)
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore FILENAME",
	Short: "Write a stored file back to disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		outputDir, _ := cmd.Flags().GetString("output")

		a, err := newApp(cmd.Context(), "restore")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		path, err := a.Restore(cmd.Context(), args[0], outputDir)
		if err != nil {
			return fmt.Errorf("restoring: %w", err)
		}
		fmt.Printf("Restored %s\n", path)
		return nil
	},
}

// label command
var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Manage the vault access label",
}

var labelSetCmd = &cobra.Command{
	Use:   "set [LABEL]",
	Short: "Set the access label (advisory only, stored in plain text)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var label string
		if len(args) > 0 {
			label = args[0]
		} else {
			label, err = readLabel()
			if err != nil {
				return err
			}
		}

		a, err := newApp(cmd.Context(), "label set")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		if err := a.SetAccessLabel(cmd.Context(), label); err != nil {
			return err
		}
		fmt.Println("Access label updated.")
		return nil
	},
}

// readLabel prompts for the label, without echo when stdin is a terminal.
func readLabel() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Access label: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading label: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading label: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var labelShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the access label",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "label show")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		fmt.Println(a.Config().AccessLabel)
		return nil
	},
}

// delete-default command
var deleteDefaultCmd = &cobra.Command{
	Use:       "delete-default on|off",
	Short:     "Choose whether add removes source files by default",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var enabled bool
		switch args[0] {
		case "on":
			enabled = true
		case "off":
			enabled = false
		default:
			return fmt.Errorf("expected on or off, got %q", args[0])
		}

		a, err := newApp(cmd.Context(), "delete-default")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		if err := a.SetDeleteOriginalsDefault(cmd.Context(), enabled); err != nil {
			return err
		}
		fmt.Printf("Delete originals by default: %s\n", args[0])
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View vault operation history",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context(), "history")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		ops, err := a.GetHistory(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No vault operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.Finished() {
				d := op.FinishedAt.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-15s  %s  %-8s  %-10s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Local().Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				op.Parameters,
			)
		}
		return nil
	},
}

// mirror command
var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Manage the vault mirror",
}

var mirrorPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the vault document to the mirror",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "mirror push")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		if err := a.PushMirror(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Mirror updated.")
		return nil
	},
}

var mirrorPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace the local vault with the mirrored document",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "mirror pull")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		n, err := a.PullMirror(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Pulled %d file(s) into %s\n", n, a.Location())
		return nil
	},
}

var mirrorCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the mirror is reachable",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp(cmd.Context(), "mirror check")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		if err := a.CheckMirror(cmd.Context()); err != nil {
			return fmt.Errorf("mirror check failed: %w", err)
		}
		fmt.Println("Mirror OK.")
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// label subcommands
	labelCmd.AddCommand(labelSetCmd)
	labelCmd.AddCommand(labelShowCmd)

	// mirror subcommands
	mirrorCmd.AddCommand(mirrorPushCmd)
	mirrorCmd.AddCommand(mirrorPullCmd)
	mirrorCmd.AddCommand(mirrorCheckCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	addCmd.Flags().Bool("delete", false, "Remove the source file after it is stored")
	addCmd.Flags().Bool("keep", false, "Keep the source file")
	addCmd.MarkFlagsMutuallyExclusive("delete", "keep")
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(rmCmd)
	rmCmd.Flags().String("name", "", "Remove the file with this name")
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().StringP("output", "o", "", "Directory to write to (default: downloads directory)")
	rootCmd.AddCommand(labelCmd)
	rootCmd.AddCommand(deleteDefaultCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(mirrorCmd)
}
