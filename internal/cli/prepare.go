package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nickmvincent/agentwatch/internal/bundle"
	"github.com/nickmvincent/agentwatch/internal/logging"
	"github.com/nickmvincent/agentwatch/internal/prepare"
	"github.com/nickmvincent/agentwatch/internal/profile"
	"github.com/nickmvincent/agentwatch/internal/redact"
)

var prepareFlags struct {
	profileID     string
	fields        []string
	out           string
	force         bool
	shared        bool
	workers       int
	redactConfig  string
	highEntropy   bool
	contributorID string
	license       string
	aiPreference  string
	rights        bool
	reviewed      bool
}

var prepareCmd = &cobra.Command{
	Use:   "prepare [flags] FILE...",
	Short: "Prepare session files for contribution",
	Long: "Reads raw session JSON files, strips fields per the selected profile, " +
		"redacts sensitive content, and prints a redaction report. With --out, " +
		"writes export-ready bundle lines (JSONL). A blocked report refuses to " +
		"write unless --force is given.",
	Args: cobra.MinimumNArgs(1),
	RunE: runPrepare,
}

func init() {
	f := prepareCmd.Flags()
	f.StringVar(&prepareFlags.profileID, "profile", "moderate", "sensitivity profile id")
	f.StringSliceVar(&prepareFlags.fields, "fields", nil, "override the profile's kept fields")
	f.StringVar(&prepareFlags.out, "out", "", "write bundle lines (JSONL) to this file")
	f.BoolVar(&prepareFlags.force, "force", false, "write output even when the report is blocked")
	f.BoolVar(&prepareFlags.shared, "shared-placeholders", false, "share placeholder numbering across the batch")
	f.IntVar(&prepareFlags.workers, "workers", 0, "parallel session workers (0 = all CPUs)")
	f.StringVar(&prepareFlags.redactConfig, "redact-config", "", "extra patterns file (default ~/.agentwatch/redact.yaml)")
	f.BoolVar(&prepareFlags.highEntropy, "high-entropy", false, "also redact high-entropy tokens")
	f.StringVar(&prepareFlags.contributorID, "contributor-id", "", "contributor id for bundle metadata")
	f.StringVar(&prepareFlags.license, "license", "CC0-1.0", "dataset license for bundle metadata")
	f.StringVar(&prepareFlags.aiPreference, "ai-preference", "", "contributor AI-use preference")
	f.BoolVar(&prepareFlags.rights, "confirm-rights", false, "confirm the contributor holds the rights")
	f.BoolVar(&prepareFlags.reviewed, "confirm-reviewed", false, "confirm the contributor reviewed the output")
	rootCmd.AddCommand(prepareCmd)
}

func runPrepare(cmd *cobra.Command, args []string) error {
	prof, err := profile.Load(prepareFlags.profileID)
	if err != nil {
		return err
	}

	cfg := prof.Redaction
	cfg.EnableHighEntropy = cfg.EnableHighEntropy || prepareFlags.highEntropy
	fc, err := redact.LoadFileConfig(prepareFlags.redactConfig)
	if err != nil {
		return err
	}
	cfg = fc.Merge(cfg)

	sessions := make([]prepare.Session, 0, len(args))
	for _, path := range args {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read session file: %w", err)
		}
		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		sessions = append(sessions, prepare.Session{ID: id, Raw: raw})
	}

	contributor := bundle.Contributor{
		ContributorID:     prepareFlags.contributorID,
		License:           prepareFlags.license,
		AIPreference:      prepareFlags.aiPreference,
		RightsConfirmed:   prepareFlags.rights,
		ReviewedConfirmed: prepareFlags.reviewed,
	}

	pr := prepare.New(redact.DefaultLibrary(), logging.L(), prepare.Options{
		Workers:            prepareFlags.workers,
		SharedPlaceholders: prepareFlags.shared,
	})
	res, err := pr.Prepare(cmd.Context(), prepare.Request{
		Sessions:       sessions,
		Profile:        prof,
		Redaction:      cfg,
		SelectedFields: prepareFlags.fields,
		Contributor:    contributor,
	})
	if err != nil {
		return err
	}

	printReport(cmd, res)

	if res.Report.Blocked && !prepareFlags.force {
		return fmt.Errorf("export blocked: %d residue warning(s); rerun with --force to override",
			len(res.Report.ResidueWarnings))
	}

	if prepareFlags.out != "" {
		if err := writeBundle(prepareFlags.out, res); err != nil {
			return err
		}
		logging.L().Info("bundle written",
			zap.String("path", prepareFlags.out),
			zap.Int("sessions", len(res.Sessions)))
	}
	return nil
}

func printReport(cmd *cobra.Command, res *prepare.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "sessions: %d prepared, %d failed of %d requested\n",
		res.Stats.Prepared, res.Stats.Failed, res.Stats.Requested)
	fmt.Fprintf(out, "redactions: %d total\n", res.Report.TotalRedactions)
	for _, cat := range redact.Categories() {
		if n := res.Report.CountsByCategory[cat]; n > 0 {
			fmt.Fprintf(out, "  %s: %d\n", cat, n)
		}
	}
	for src, sf := range res.FieldsBySource {
		fmt.Fprintf(out, "fields (%s): %d/%d kept\n", src, len(sf.Kept), len(sf.Present))
	}
	for _, e := range res.Errors {
		fmt.Fprintf(out, "error: session %s: %s\n", e.SessionID, e.Err)
	}
	// Residue warnings are shown verbatim; the user decides what to do.
	for _, w := range res.Report.ResidueWarnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	if res.Report.Blocked {
		fmt.Fprintln(out, "status: BLOCKED")
	}
}

func writeBundle(path string, res *prepare.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bundle file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, s := range res.Sessions {
		line := bundle.NewLine(s.Source, res.Contributor, s.Raw)
		data, err := line.Encode()
		if err != nil {
			return fmt.Errorf("encode bundle line for %s: %w", s.SessionID, err)
		}
		if err := bundle.ValidateLine(data); err != nil {
			return fmt.Errorf("bundle line for %s: %w", s.SessionID, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("write bundle line: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush bundle file: %w", err)
	}
	return f.Close()
}
