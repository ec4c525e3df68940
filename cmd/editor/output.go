package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"pilott-date-editor/internal/domain/entity"
	"pilott-date-editor/internal/domain/rules"
	"pilott-date-editor/pkg/utils"
)

// outputFormat specifies how to render the check report
type outputFormat string

const (
	outputTable outputFormat = "table"
	outputJSON  outputFormat = "json"
	outputYAML  outputFormat = "yaml"
)

func parseOutputFormat(s string) (outputFormat, error) {
	switch strings.ToLower(s) {
	case "table", "":
		return outputTable, nil
	case "json":
		return outputJSON, nil
	case "yaml":
		return outputYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (supported: table, json, yaml)", s)
	}
}

// recordView is the printable form of one assignment record
type recordView struct {
	File            string `json:"file" yaml:"file"`
	AssignmentID    string `json:"assignmentId" yaml:"assignmentId"`
	SupplierID      string `json:"staffingSupplierId,omitempty" yaml:"staffingSupplierId,omitempty"`
	Scheme          string `json:"scheme" yaml:"scheme"`
	StartDate       string `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	ExpectedEndDate string `json:"expectedEndDate,omitempty" yaml:"expectedEndDate,omitempty"`
	ActualEndDate   string `json:"actualEndDate,omitempty" yaml:"actualEndDate,omitempty"`
	FlexMinDate     string `json:"flexibilityMinDate,omitempty" yaml:"flexibilityMinDate,omitempty"`
	FlexMaxDate     string `json:"flexibilityMaxDate,omitempty" yaml:"flexibilityMaxDate,omitempty"`
	FlexDays        int    `json:"flexibilityDays,omitempty" yaml:"flexibilityDays,omitempty"`
	SourceFlexMin   string `json:"sourceFlexibilityMinDate,omitempty" yaml:"sourceFlexibilityMinDate,omitempty"`
	SourceFlexMax   string `json:"sourceFlexibilityMaxDate,omitempty" yaml:"sourceFlexibilityMaxDate,omitempty"`
	Coherent        bool   `json:"coherent" yaml:"coherent"`
	Problem         string `json:"problem,omitempty" yaml:"problem,omitempty"`
}

func newRecordView(rec *entity.AssignmentRecord) recordView {
	v := recordView{
		File:            rec.SourceFilename,
		AssignmentID:    rec.AssignmentID,
		SupplierID:      rec.StaffingSupplierID,
		Scheme:          rec.Scheme,
		StartDate:       utils.FormatOptionalDate(rec.StartDate, ""),
		ExpectedEndDate: utils.FormatOptionalDate(rec.ExpectedEndDate, ""),
		ActualEndDate:   utils.FormatOptionalDate(rec.ActualEndDate, ""),
		FlexMinDate:     utils.FormatOptionalDate(rec.FlexMinDate, ""),
		FlexMaxDate:     utils.FormatOptionalDate(rec.FlexMaxDate, ""),
		SourceFlexMin:   utils.FormatOptionalDate(rec.SourceFlexMinDate, ""),
		SourceFlexMax:   utils.FormatOptionalDate(rec.SourceFlexMaxDate, ""),
		Coherent:        true,
	}
	if fr, err := rules.FlexWindow(rec); err == nil {
		v.FlexDays = fr.Days
	}
	if err := rules.CheckRecord(rec); err != nil {
		v.Coherent = false
		v.Problem = err.Error()
	}
	return v
}

func printRecords(w io.Writer, format outputFormat, records []*entity.AssignmentRecord) error {
	views := make([]recordView, 0, len(records))
	for _, rec := range records {
		views = append(views, newRecordView(rec))
	}

	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tASSIGNMENT\tSTART\tEXPECTED END\tACTUAL END\tFLEX MIN\tFLEX MAX\tDAYS\tSTATUS")
	for _, v := range views {
		status := "ok"
		if !v.Coherent {
			status = v.Problem
		}
		days := "-"
		if v.FlexDays > 0 {
			days = strconv.Itoa(v.FlexDays)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.File, v.AssignmentID,
			dash(v.StartDate), dash(v.ExpectedEndDate), dash(v.ActualEndDate),
			dash(v.FlexMinDate), dash(v.FlexMaxDate), days, status)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// printMessages writes the operation log, oldest first
func printMessages(w io.Writer, messages []entity.LogEntry) {
	if len(messages) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, m := range messages {
		fmt.Fprintf(w, "%s [%s] %s\n", m.Time.Format("15:04:05"), strings.ToUpper(m.Level), m.Message)
	}
}
