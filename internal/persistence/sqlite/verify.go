// SPDX-License-Identifier: MIT

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// IntegrityReport is the outcome of an integrity check.
type IntegrityReport struct {
	Mode   string
	Issues []string
}

// Healthy reports whether the check found no problems.
func (r IntegrityReport) Healthy() bool { return len(r.Issues) == 0 }

// VerifyIntegrity opens the database read-only and runs PRAGMA quick_check
// (mode "quick") or PRAGMA integrity_check (mode "full").
func VerifyIntegrity(ctx context.Context, path, mode string) (IntegrityReport, error) {
	report := IntegrityReport{Mode: "quick"}
	pragma := "PRAGMA quick_check;"
	if mode == "full" {
		report.Mode = "full"
		pragma = "PRAGMA integrity_check;"
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(2000)", path))
	if err != nil {
		return report, fmt.Errorf("open database for verification: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, pragma)
	if err != nil {
		return report, fmt.Errorf("integrity pragma failed: %w", err)
	}
	defer rows.Close()

	var results []string
	for rows.Next() {
		var res string
		if err := rows.Scan(&res); err != nil {
			return report, fmt.Errorf("scan integrity result row: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return report, err
	}

	switch {
	case len(results) == 1 && strings.EqualFold(results[0], "ok"):
	case len(results) == 0:
		report.Issues = []string{"no results returned from integrity check"}
	default:
		report.Issues = results
	}
	return report, nil
}
