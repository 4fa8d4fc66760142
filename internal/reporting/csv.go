package reporting

import (
	"fmt"
	"strings"

	"networth-scenario-lab/internal/domain"
)

// RenderCSV renders the net worth distribution as CSV string.
func RenderCSV(distribution []domain.Bucket) string {
	var sb strings.Builder

	// Header
	sb.WriteString("bucket,net_worth,count\n")

	// Rows
	for i, b := range distribution {
		sb.WriteString(fmt.Sprintf("%d,%.2f,%d\n", i, b.NetWorth, b.Count))
	}

	return sb.String()
}
