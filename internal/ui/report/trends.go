package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"modelscan/internal/data/history"
)

func RenderTrendTSV(report history.TrendReport) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("Timestamp\tScanID\tCommit\tFiles\tFindings\tLiterals\tAssignments\tConcatenations\tModels\tDeltaFiles\tDeltaFindings\tDeltaModels\tFindingGrowthPct\tAvgFindings\tWindowHours\n")
	for _, point := range report.Points {
		buf.WriteString(fmt.Sprintf(
			"%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\n",
			point.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			point.ScanID,
			point.CommitHash,
			point.FilesScanned,
			point.TotalFindings,
			point.StringLiterals,
			point.VariableAssignments,
			point.Concatenations,
			point.ModelCount,
			point.DeltaFiles,
			point.DeltaFindings,
			point.DeltaModels,
			point.FindingGrowthPct,
			point.AvgFindings,
			point.WindowHours,
		))
	}

	return []byte(buf.String()), nil
}

func RenderTrendJSON(report history.TrendReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
