package main

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"pilott-date-editor/internal/domain/entity"
	"pilott-date-editor/internal/usecase"
	"pilott-date-editor/pkg/utils"
)

// errFailures is returned when some records could not be processed
var errFailures = errors.New("some operations failed, see the log above")

func newCheckCmd(appFn func() *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Load assignment exports and report their dates",
		Long: `Load one or more ASS_*_A_ETT.xml exports and print, for each assignment,
its dates, the computed flexibility window and whether the dates are coherent.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}

			a := appFn()
			defer a.finish(cmd)

			outcomes, err := a.load(cmd.Context(), args)
			if err != nil {
				return err
			}
			if err := printRecords(cmd.OutOrStdout(), format, a.session.Records); err != nil {
				return err
			}
			return failuresOf(outcomes)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json, yaml")
	return cmd
}

func newUpdateCmd(appFn func() *app) *cobra.Command {
	var (
		id             string
		start          string
		expectedEnd    string
		actualEnd      string
		clearActualEnd bool
		outDir         string
		validate       bool
		patchedSource  bool
	)

	cmd := &cobra.Command{
		Use:   "update FILE...",
		Short: "Apply new dates and generate assignment update packets",
		Long: `Load the given exports, optionally apply new dates, and write one
ASS_<timestamp>_AU_ETT.xml update packet per coherent assignment.
With --patched-source the source document is also written with its dates updated.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			change, err := parseDateChange(start, expectedEnd, actualEnd, clearActualEnd)
			if err != nil {
				return err
			}

			a := appFn()
			defer a.finish(cmd)
			if !cmd.Flags().Changed("out") {
				outDir = a.cfg.OutputDir
			}
			if !cmd.Flags().Changed("validate") {
				validate = a.cfg.ValidateOutput
			}

			ctx := cmd.Context()
			outcomes, err := a.load(ctx, args)
			if err != nil {
				return err
			}
			records, err := a.selectRecords(id)
			if err != nil {
				return err
			}

			failed := failuresOf(outcomes) != nil
			var sources []string
			seen := make(map[string]bool)
			for _, rec := range records {
				if !seen[rec.SourceFilename] {
					seen[rec.SourceFilename] = true
					sources = append(sources, rec.SourceFilename)
				}

				if change.hasDates() {
					if _, err := a.editor.UpdateDates(ctx, a.session, rec, change.DateChange); err != nil {
						failed = true
						continue
					}
				}

				file, err := a.editor.GenerateUpdate(ctx, a.session, rec)
				if err != nil {
					failed = true
					continue
				}
				if _, err := a.save(ctx, file, outDir, validate); err != nil {
					failed = true
				}
			}

			if patchedSource {
				for _, filename := range sources {
					patched, err := a.editor.ExportPatchedSource(ctx, a.session, filename)
					if err != nil {
						failed = true
						continue
					}
					if _, err := a.save(ctx, patched, outDir, validate); err != nil {
						failed = true
					}
				}
			}

			if failed {
				return errFailures
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Only process this assignment id")
	cmd.Flags().StringVar(&start, "start", "", "New start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&expectedEnd, "expected-end", "", "New expected end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&actualEnd, "actual-end", "", "New actual end date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearActualEnd, "clear-actual-end", false, "Remove the actual end date")
	cmd.Flags().StringVar(&outDir, "out", ".", "Output directory (defaults to OUTPUT_DIR)")
	cmd.Flags().BoolVar(&validate, "validate", false, "Validate written files against the XSD schemas")
	cmd.Flags().BoolVar(&patchedSource, "patched-source", false, "Also write the source document with updated dates")
	cmd.MarkFlagsMutuallyExclusive("actual-end", "clear-actual-end")

	return cmd
}

func newFlexCmd(appFn func() *app) *cobra.Command {
	var (
		id       string
		useDate  string
		remove   bool
		outDir   string
		validate bool
	)

	cmd := &cobra.Command{
		Use:   "flex FILE...",
		Short: "Generate flexibility use staffing actions",
		Long: `Load the given exports and write one ASS_<timestamp>_SA_ETT.xml staffing
action per assignment, recording the flexibility use date given by --date
or revoking it with --delete.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := entity.StaffingAction{Delete: remove}
			if !remove {
				d, err := parseDateFlag("date", useDate)
				if err != nil {
					return err
				}
				action.UseDate = d
			}

			a := appFn()
			defer a.finish(cmd)
			if !cmd.Flags().Changed("out") {
				outDir = a.cfg.OutputDir
			}
			if !cmd.Flags().Changed("validate") {
				validate = a.cfg.ValidateOutput
			}

			ctx := cmd.Context()
			outcomes, err := a.load(ctx, args)
			if err != nil {
				return err
			}
			records, err := a.selectRecords(id)
			if err != nil {
				return err
			}

			failed := failuresOf(outcomes) != nil
			for _, rec := range records {
				file, err := a.editor.GenerateStaffingAction(ctx, a.session, rec, action)
				if err != nil {
					failed = true
					continue
				}
				if _, err := a.save(ctx, file, outDir, validate); err != nil {
					failed = true
				}
			}

			if failed {
				return errFailures
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Only process this assignment id")
	cmd.Flags().StringVar(&useDate, "date", "", "Flexibility use date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&remove, "delete", false, "Revoke the recorded flexibility use")
	cmd.Flags().StringVar(&outDir, "out", ".", "Output directory (defaults to OUTPUT_DIR)")
	cmd.Flags().BoolVar(&validate, "validate", false, "Validate written files against the XSD schemas")
	cmd.MarkFlagsMutuallyExclusive("date", "delete")
	cmd.MarkFlagsOneRequired("date", "delete")

	return cmd
}

type dateChange struct {
	usecase.DateChange
}

func (c dateChange) hasDates() bool {
	return c.StartDate != nil || c.ExpectedEndDate != nil || c.ActualEndDate != nil || c.ClearActualEnd
}

func parseDateChange(start, expectedEnd, actualEnd string, clearActualEnd bool) (dateChange, error) {
	var (
		c   dateChange
		err error
	)
	if c.StartDate, err = parseOptionalDateFlag("start", start); err != nil {
		return c, err
	}
	if c.ExpectedEndDate, err = parseOptionalDateFlag("expected-end", expectedEnd); err != nil {
		return c, err
	}
	if c.ActualEndDate, err = parseOptionalDateFlag("actual-end", actualEnd); err != nil {
		return c, err
	}
	c.ClearActualEnd = clearActualEnd
	return c, nil
}

func parseOptionalDateFlag(name, value string) (*civil.Date, error) {
	d, err := utils.ParseOptionalDate(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, value)
	}
	return d, nil
}

func parseDateFlag(name, value string) (*civil.Date, error) {
	d, err := parseOptionalDateFlag(name, value)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("--%s is required", name)
	}
	return d, nil
}

// failuresOf reports whether any document failed to load
func failuresOf(outcomes []usecase.LoadOutcome) error {
	for _, o := range outcomes {
		if o.Err != nil {
			return errFailures
		}
	}
	return nil
}
