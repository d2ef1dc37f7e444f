package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"quotawin/internal/modules/recommend/domain"
	"quotawin/internal/platform/clock"
	"quotawin/internal/platform/markdown"
)

const planSchemaVersion = 1

var planBlock = markdown.NewBlock("quotawin:plan")

// MarkdownPlanWriter renders the plan into a note. Frontmatter keys it does
// not own and text outside the plan block are kept across exports.
type MarkdownPlanWriter struct{}

func NewMarkdownPlanWriter() MarkdownPlanWriter {
	return MarkdownPlanWriter{}
}

func (MarkdownPlanWriter) Write(_ context.Context, path string, plan domain.ExportedPlan) error {
	note := markdown.Note{Meta: map[string]any{}, Body: "# Quota plan\n"}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		note, err = markdown.Parse(string(raw))
		if err != nil {
			return fmt.Errorf("parse existing plan %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("read existing plan: %w", err)
	}

	note.Meta["schema_version"] = planSchemaVersion
	note.Meta["generated_at"] = clock.ToISO(plan.GeneratedAt)
	note.Meta["history_days"] = plan.HistoryDays
	if plan.HasStart {
		note.Meta["start"] = plan.Recommendation.Start()
		note.Meta["confidence"] = plan.Recommendation.Confidence
		note.Meta["expected_utilization"] = plan.Recommendation.ExpectedUtilization
	} else {
		delete(note.Meta, "start")
		delete(note.Meta, "confidence")
		delete(note.Meta, "expected_utilization")
	}
	note.Body = planBlock.Replace(note.Body, renderPlanBody(plan))

	rendered, err := note.Render()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create plan dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return nil
}

func renderPlanBody(plan domain.ExportedPlan) string {
	var b strings.Builder
	b.WriteString("## Today\n\n")
	rows := make([][]string, 0, len(plan.Today.Windows))
	for i, w := range plan.Today.Windows {
		rows = append(rows, []string{strconv.Itoa(i + 1), w.Start, w.End})
	}
	fmt.Fprintf(&b, "Workday %s to %s.\n\n", plan.Today.Start, plan.Today.End)
	b.WriteString(markdown.Table([]string{"window", "trigger", "ends"}, rows))
	b.WriteString("\n\n## Week\n\n")

	rows = make([][]string, 0, len(plan.Week))
	for _, day := range plan.Week {
		start := "-"
		if day.HasStart {
			start = day.Start.Start()
		}
		spans := make([]string, 0, len(day.Windows))
		for _, w := range day.Windows {
			spans = append(spans, w.Start()+"-"+w.End())
		}
		active := "-"
		if len(spans) > 0 {
			active = strings.Join(spans, ", ")
		}
		rows = append(rows, []string{
			day.Day.String(),
			start,
			active,
			strconv.Itoa(day.TotalExpectedHours),
			strconv.FormatFloat(day.AvgUsage, 'f', 2, 64),
		})
	}
	b.WriteString(markdown.Table([]string{"day", "start", "active", "hours", "avg %"}, rows))
	return b.String()
}
