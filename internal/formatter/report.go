package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"catalogsize/internal/cluster"
	"catalogsize/internal/geometry"
	"catalogsize/internal/normalizer"
	"catalogsize/pkg/metadata"
)

// maxReportedErrors bounds the error list of a projection report.
const maxReportedErrors = 20

var outcomeOrder = []geometry.Outcome{
	geometry.OutcomeProjected,
	geometry.OutcomeEmpty,
	geometry.OutcomeNoMatch,
	geometry.OutcomeNoUnit,
	geometry.OutcomeUnsupported,
}

// RenderProjectionReport summarizes a projection batch.
func RenderProjectionReport(meta *metadata.Metadata, stats normalizer.Stats) string {
	var sb strings.Builder

	sb.WriteString("# Projection report\n\n")
	writeRun(&sb, meta)

	sb.WriteString("## Records\n\n")
	sb.WriteString(FormatTable(
		[]string{"Records", "Projected", "Invalid", "Cancelled"},
		[][]string{{
			strconv.Itoa(stats.Records),
			strconv.Itoa(stats.Projected),
			strconv.Itoa(stats.Invalid),
			strconv.Itoa(stats.Cancelled),
		}},
	))

	sb.WriteString("\n## Columns\n\n")

	rows := make([][]string, 0, len(outcomeOrder))
	for _, o := range outcomeOrder {
		rows = append(rows, []string{string(o), strconv.Itoa(stats.Columns[o])})
	}

	sb.WriteString(FormatTable([]string{"Outcome", "Columns"}, rows))

	if len(stats.Errors) > 0 {
		sb.WriteString("\n## Invalid records\n\n")

		for i, err := range stats.Errors {
			if i == maxReportedErrors {
				fmt.Fprintf(&sb, "- ... and %d more\n", len(stats.Errors)-maxReportedErrors)
				break
			}

			fmt.Fprintf(&sb, "- %s\n", err)
		}
	}

	return sb.String()
}

// RenderNameCounts lists the largest name groups. limit <= 0 lists all.
func RenderNameCounts(meta *metadata.Metadata, counts []cluster.NameCount, limit int) string {
	var sb strings.Builder

	sb.WriteString("# Name groups\n\n")
	writeRun(&sb, meta)

	if limit <= 0 || limit > len(counts) {
		limit = len(counts)
	}

	rows := make([][]string, 0, limit)
	for _, c := range counts[:limit] {
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Count)})
	}

	sb.WriteString(FormatTable([]string{"Name", "Entries"}, rows))

	if limit < len(counts) {
		fmt.Fprintf(&sb, "\n%d of %d names shown.\n", limit, len(counts))
	}

	return sb.String()
}

// SweepRow is one clustered name in a clustering report.
type SweepRow struct {
	Name   string
	Points []cluster.SweepPoint
	Note   string
}

// RenderClusterReport tabulates the inertia of every k tried per name.
func RenderClusterReport(meta *metadata.Metadata, rows []SweepRow) string {
	var sb strings.Builder

	sb.WriteString("# Size groups\n\n")
	writeRun(&sb, meta)

	table := make([][]string, 0, len(rows))

	for _, r := range rows {
		if len(r.Points) == 0 {
			table = append(table, []string{r.Name, "-", "-", "-", "-", r.Note})
			continue
		}

		for _, p := range r.Points {
			table = append(table, []string{
				r.Name,
				strconv.Itoa(p.K),
				strconv.Itoa(p.Result.K),
				strconv.Itoa(p.Result.Valid),
				strconv.FormatFloat(p.Result.Inertia, 'f', 4, 64),
				r.Note,
			})
		}
	}

	sb.WriteString(FormatTable([]string{"Name", "k", "Clusters", "Entries", "Inertia", "Note"}, table))

	return sb.String()
}

func writeRun(sb *strings.Builder, meta *metadata.Metadata) {
	if meta == nil {
		return
	}

	sb.WriteString(FormatTable(
		[]string{"Run", "Tool", "Generated", "Config"},
		[][]string{{meta.RunID, meta.Tool, meta.GeneratedAt.Format(time.RFC3339), shortHash(meta.ConfigHash)}},
	))
	sb.WriteString("\n")
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}

	return h
}
