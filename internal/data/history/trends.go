package history

import (
	"fmt"
	"math"
	"time"
)

func BuildTrendReport(snapshots []Snapshot, window time.Duration) (TrendReport, error) {
	if len(snapshots) == 0 {
		return TrendReport{}, fmt.Errorf("no snapshots available")
	}

	points := make([]TrendPoint, 0, len(snapshots))
	for i, current := range snapshots {
		point := TrendPoint{
			Timestamp:           current.Timestamp,
			ScanID:              current.ScanID,
			CommitHash:          current.CommitHash,
			FilesScanned:        current.FilesScanned,
			TotalFindings:       current.TotalFindings,
			StringLiterals:      current.StringLiterals,
			VariableAssignments: current.VariableAssignments,
			Concatenations:      current.StringConcatenations,
			ModelCount:          len(current.Models),
		}

		if i > 0 {
			prev := snapshots[i-1]
			point.DeltaFiles = current.FilesScanned - prev.FilesScanned
			point.DeltaFindings = current.TotalFindings - prev.TotalFindings
			point.DeltaModels = len(current.Models) - len(prev.Models)
			if prev.TotalFindings > 0 {
				point.FindingGrowthPct = round2((float64(point.DeltaFindings) / float64(prev.TotalFindings)) * 100)
			}
		}

		point.AvgFindings = round2(movingAverage(snapshots, i, window))
		point.WindowHours = round2(window.Hours())
		points = append(points, point)
	}

	return TrendReport{
		SchemaVersion: SchemaVersion,
		Since:         snapshots[0].Timestamp,
		Until:         snapshots[len(snapshots)-1].Timestamp,
		Window:        window.String(),
		ScanCount:     len(points),
		Points:        points,
	}, nil
}

func movingAverage(snapshots []Snapshot, index int, window time.Duration) float64 {
	if window <= 0 {
		return float64(snapshots[index].TotalFindings)
	}

	cutoff := snapshots[index].Timestamp.Add(-window)
	total := 0
	count := 0
	for i := index; i >= 0; i-- {
		if snapshots[i].Timestamp.Before(cutoff) {
			break
		}
		total += snapshots[i].TotalFindings
		count++
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
