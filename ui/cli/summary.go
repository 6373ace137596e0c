// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/toeirei/devboot/internal/i18n"
	"github.com/toeirei/devboot/internal/onboard"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)

	statusColors = map[onboard.Status]lipgloss.Color{
		onboard.StatusChanged: lipgloss.Color("214"),
		onboard.StatusOK:      lipgloss.Color("42"),
		onboard.StatusWarning: lipgloss.Color("220"),
		onboard.StatusSkipped: lipgloss.Color("245"),
		onboard.StatusFailed:  lipgloss.Color("196"),
	}
)

// renderSummary prints the per-step table and the facts an operator needs
// after a run. A nil or empty report prints nothing.
func renderSummary(w io.Writer, rep *onboard.Report) {
	if rep == nil || len(rep.Results) == 0 {
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(i18n.T("summary.col_step"), i18n.T("summary.col_status"), i18n.T("summary.col_detail")).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 && row >= 0 && row < len(rep.Results) {
				if c, ok := statusColors[rep.Results[row].Status]; ok {
					return cellStyle.Foreground(c)
				}
			}
			return cellStyle
		})
	for _, r := range rep.Results {
		t.Row(r.Step, string(r.Status), r.Detail)
	}

	fmt.Fprintln(w, titleStyle.Render(i18n.T("summary.title")))
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, i18n.T("summary.counts",
		rep.Count(onboard.StatusChanged), rep.Count(onboard.StatusOK), rep.Count(onboard.StatusWarning),
		rep.Count(onboard.StatusSkipped), rep.Count(onboard.StatusFailed)))

	if rep.Identity != "" {
		fmt.Fprintln(w, i18n.T("summary.identity", rep.Identity))
		fmt.Fprintln(w, i18n.T("summary.branch", rep.Branch))
	}
	if rep.Keys.PrivateKeyPath != "" {
		fmt.Fprintln(w, i18n.T("summary.private_key", rep.Keys.PrivateKeyPath))
		fmt.Fprintln(w, i18n.T("summary.published_key", rep.Keys.DestinationPublicKeyPath))
	}
	if len(rep.Tools) > 0 {
		fmt.Fprintln(w, i18n.T("summary.tools", formatTools(rep.Tools)))
	}
	if rep.PushCommand != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, i18n.T("summary.push_manual"))
		fmt.Fprintln(w, "  "+rep.PushCommand)
	}
}

func formatTools(tools []onboard.ToolPresence) string {
	parts := make([]string, 0, len(tools))
	for _, tp := range tools {
		mark := "+"
		if !tp.Present {
			mark = "-"
		}
		parts = append(parts, mark+string(tp.Tool))
	}
	return strings.Join(parts, " ")
}
