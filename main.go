package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"nvmlsg/internal/config"
	"nvmlsg/internal/node"
	"nvmlsg/internal/progress"
	"nvmlsg/internal/report"
	"nvmlsg/internal/theme"
	"nvmlsg/internal/updater"

	"github.com/urfave/cli/v3"
)

// Version is set during build time via ldflags
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := runCLI(ctx, os.Args, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, theme.ErrorMessage(err.Error()))
		os.Exit(1)
	}
}

// runCLI builds the command tree and runs it against args.
// Errors are returned for the caller to print; nothing here calls os.Exit.
func runCLI(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	return newApp(stdout, stderr).Run(ctx, args)
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "nvmlsg",
		Version:   Version,
		Usage:     "List global npm packages for all Node.js versions in nvm",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "nvm-dir",
				Usage:       "nvm directory to scan (its versions/node subdirectory is used)",
				DefaultText: "$NVM_DIR or ~/.nvm",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:  "no-spinner",
				Usage: "Do not animate progress while scanning",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("no-color") {
				theme.DisableColor()
			}
			return ctx, nil
		},
		Action: handleList,
		Commands: []*cli.Command{
			{
				Name:   "ls",
				Usage:  "List global npm packages for all Node.js versions",
				Action: handleList,
			},
			{
				Name:        "update",
				Usage:       "Check for and install a newer nvmlsg release",
				Description: "Releases come from the GitHub repository named by update.repository in the config file. Development builds are never replaced.",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Install without asking",
					},
				},
				Action: handleUpdate,
			},
		},
	}
}

func handleList(ctx context.Context, cmd *cli.Command) error {
	root := cmd.Root()
	out, errOut := root.Writer, root.ErrWriter

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	nvmDir := cmd.String("nvm-dir")
	if nvmDir == "" {
		nvmDir = cfg.NvmDir
	}

	var spin *progress.Spinner
	if !cmd.Bool("no-spinner") && errOut == io.Writer(os.Stderr) && progress.IsInteractive(os.Stderr) {
		spin = progress.Start("Scanning for Node.js versions...", errOut)
	}

	inspector := node.NewInspector(node.NewLocator(nvmDir), node.ExecRunner{}).
		WithProgress(spin).
		WithWarnings(func(version string, err error) {
			msg := theme.WarningMessage(fmt.Sprintf("Warning: Could not list packages for %s", version)) +
				" " + theme.Faint.Render(err.Error())
			if spin != nil {
				spin.Println(msg)
				return
			}
			fmt.Fprintln(errOut, msg)
		})

	records, err := inspector.ListAll(ctx)
	spin.Stop()
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No Node.js installations found.")
		return nil
	}

	formatter := report.NewFormatter()
	if out == io.Writer(os.Stdout) && progress.IsTTY(os.Stdout) && !cmd.Bool("no-color") {
		formatter.WithHeaderStyle(theme.PathStyle.Render)
	}
	fmt.Fprintln(out, formatter.Format(records))

	notifyUpdate(ctx, cfg, errOut)
	return nil
}

// notifyUpdate prints a hint when auto_check is on and a newer release exists.
// Failures are ignored; the listing has already been printed.
func notifyUpdate(ctx context.Context, cfg *config.Config, w io.Writer) {
	if !cfg.UpdateConfig.AutoCheck {
		return
	}

	upd, err := updater.NewUpdater(cfg, Version, updater.WithOutput(w))
	if err != nil || !upd.ShouldCheckForUpdate() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	release, err := upd.CheckForUpdate(ctx)
	if err != nil || release == nil {
		return
	}
	updater.ShowUpdateNotification(w, upd.CurrentVersion(), release.Version())
}

func handleUpdate(ctx context.Context, cmd *cli.Command) error {
	w := cmd.Root().ErrWriter

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	upd, err := updater.NewUpdater(cfg, Version, updater.WithOutput(w))
	switch {
	case errors.Is(err, updater.ErrDisabled):
		fmt.Fprintln(w, theme.WarningMessage("Updates are disabled in configuration."))
		fmt.Fprintln(w, theme.Faint.Render(fmt.Sprintf("To enable, set update.enabled to true and update.repository to owner/name in %s", cfg.FilePath())))
		return nil
	case errors.Is(err, updater.ErrNoRepository):
		fmt.Fprintln(w, theme.WarningMessage("No release repository configured."))
		fmt.Fprintln(w, theme.Faint.Render(fmt.Sprintf("Set update.repository to the owner/name publishing nvmlsg releases in %s", cfg.FilePath())))
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintln(w, theme.InfoStyle.Render("Checking for updates..."))

	ctx, cancel := context.WithTimeout(ctx, updater.UpdateTimeout)
	defer cancel()

	release, err := upd.CheckForUpdate(ctx)
	if errors.Is(err, updater.ErrDevelopmentBuild) {
		fmt.Fprintln(w, theme.WarningMessage("This is a development build; install a release to use update."))
		return nil
	}
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if release == nil {
		updater.ShowAlreadyUpToDate(w, upd.CurrentVersion())
		return nil
	}

	action := updater.ActionUpdate
	if !cmd.Bool("yes") {
		action, err = upd.PromptForUpdate(release)
		if err != nil {
			fmt.Fprintln(w, theme.WarningMessage("Update cancelled."))
			return nil
		}
	}

	switch action {
	case updater.ActionSkip:
		fmt.Fprintln(w, theme.InfoMessage(fmt.Sprintf("Skipped version %s", release.Version())))
		return nil
	case updater.ActionLater:
		fmt.Fprintln(w, theme.InfoMessage("Update postponed"))
		return nil
	}

	fmt.Fprintln(w, theme.InfoStyle.Render(fmt.Sprintf("Downloading nvmlsg %s...", release.Version())))

	if err := upd.PerformUpdate(ctx, release); err != nil {
		return err
	}

	updater.ShowUpdateSuccess(w, release.Version())
	return nil
}
