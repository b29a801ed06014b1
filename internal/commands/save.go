package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"backup-editor/internal/backup"
	"backup-editor/internal/models"
	"backup-editor/internal/services"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// SaveOptions are the flags of the save command.
type SaveOptions struct {
	Output    string
	BackupDir string
	Copies    string
	Input     string
}

func addSave(topLevel *cobra.Command, ro *rootOptions) {
	o := &SaveOptions{}

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save text to a file and write backup copies without opening a window.",
		Example: `
backup-editor save --output /tmp/out.txt --backup-dir /tmp/backups --copies 3 --input draft.txt
echo "hello world" | backup-editor save -o /tmp/out.txt -d /tmp/backups -n 3
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, log, err := ro.load(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("backup-dir") {
				o.BackupDir = settings.BackupDir
			}
			if !cmd.Flags().Changed("copies") {
				o.Copies = settings.BackupCopies
				if o.Copies == "" {
					o.Copies = "0"
				}
			}

			copies, err := models.ParseCopyCount(o.Copies, settings.MaxCopies)
			if err != nil {
				return err
			}

			content, err := o.readInput(cmd.InOrStdin())
			if err != nil {
				return err
			}

			writer := backup.NewWriter(afero.NewOsFs(), log)
			svc := services.NewSaveService(writer, log, settings.MaxConcurrency, settings.ShutdownTimeout)

			req := models.NewSaveRequest(o.Output, o.BackupDir, copies, content)
			report, err := svc.Save(req).Wait(cmd.Context())
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report)
			if !report.Succeeded() {
				return fmt.Errorf("failed to save %s: %w", o.Output, report.OriginalErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&o.Output, "output", "o", "", "File to save the text to.")
	cmd.Flags().StringVarP(&o.BackupDir, "backup-dir", "d", "", "Directory for backup copies (default from config, else the working directory).")
	cmd.Flags().StringVarP(&o.Copies, "copies", "n", "", "Number of backup copies to write (default from config, else 0).")
	cmd.Flags().StringVarP(&o.Input, "input", "i", "-", "File to read the text from, '-' for stdin.")
	_ = cmd.MarkFlagRequired("output")

	topLevel.AddCommand(cmd)
}

func (o *SaveOptions) readInput(stdin io.Reader) (string, error) {
	if o.Input == "" || o.Input == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(o.Input)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

func printReport(w io.Writer, report *models.SaveReport) {
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	size := humanize.Bytes(uint64(len(report.Request.Content)))
	if report.Succeeded() {
		fmt.Fprintf(w, "%s %s (%s)\n", ok("saved"), report.Request.Destination, size)
	} else {
		fmt.Fprintf(w, "%s %s: %v\n", bad("failed"), report.Request.Destination, report.OriginalErr)
	}

	written := report.WrittenBackups()
	failed := report.FailedBackups()
	dir := report.Request.BackupDir
	if dir == "" {
		dir = "."
	}
	fmt.Fprintf(w, "backups: %s written, %s failed in %s\n",
		ok(len(written)), colorCount(bad, len(failed)), dir)
	for _, path := range written {
		fmt.Fprintf(w, "  %s\n", dim(filepath.Base(path)))
	}
	for _, err := range failed {
		fmt.Fprintf(w, "  %s %v\n", bad("error"), err)
	}
	fmt.Fprintf(w, "%s\n", dim("took "+report.Duration.Round(time.Millisecond).String()))
}

func colorCount(c func(a ...interface{}) string, n int) string {
	if n == 0 {
		return fmt.Sprint(n)
	}
	return c(n)
}
