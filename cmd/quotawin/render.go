package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	recommenddto "quotawin/internal/modules/recommend/dto"
	scheduledto "quotawin/internal/modules/schedule/dto"
	syncdto "quotawin/internal/modules/sync/dto"
	usagedto "quotawin/internal/modules/usage/dto"
	"quotawin/internal/platform/clock"
	"quotawin/internal/ui/components"
)

const hourRuler = "0     6     12    18    "

var (
	idleColor   = color.New(color.FgHiBlack)
	lowColor    = color.New(color.FgGreen)
	midColor    = color.New(color.FgYellow)
	highColor   = color.New(color.FgRed)
	headerColor = color.New(color.Bold)
)

func heatColor(pct float64) *color.Color {
	switch {
	case pct <= 0:
		return idleColor
	case pct < 40:
		return lowColor
	case pct < 75:
		return midColor
	default:
		return highColor
	}
}

// heatStrip renders 24 colored hour cells.
func heatStrip(byHour map[int]float64) string {
	var sb strings.Builder
	for hour := 0; hour < 24; hour++ {
		pct := byHour[hour]
		sb.WriteString(heatColor(pct).Sprint(components.HeatCell(pct)))
	}
	return sb.String()
}

func confidenceColor(c float64) *color.Color {
	switch {
	case c >= 0.7:
		return lowColor
	case c >= 0.3:
		return midColor
	default:
		return highColor
	}
}

func renderHistory(w io.Writer, days []usagedto.DailyUsageOutput) {
	if len(days) == 0 {
		_, _ = fmt.Fprintln(w, "no usage recorded")
		return
	}
	_, _ = fmt.Fprintf(w, "%-10s  %s  %5s  %6s  %s\n", "date", hourRuler, "peak", "avg", "active")
	for _, day := range days {
		byHour := make(map[int]float64, len(day.Hours))
		for _, h := range day.Hours {
			byHour[h.Hour] = h.UsagePct
		}
		_, _ = fmt.Fprintf(w, "%-10s  %s  %02d:00  %5.1f%%  %dh\n",
			day.Date, heatStrip(byHour), day.PeakHour, day.AvgUsage, day.TotalActiveHours)
	}
}

func renderMachines(w io.Writer, machines []usagedto.MachineOutput) {
	if len(machines) == 0 {
		_, _ = fmt.Fprintln(w, "no machines")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "MACHINE\tHOURS\tLAST HOUR\t")
	for _, m := range machines {
		id := m.MachineID
		if m.Local {
			id += " (local)"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t\n", id, m.Hours, clock.ToISO(m.LastHour))
	}
	_ = tw.Flush()
}

func renderRecommendation(w io.Writer, rec recommenddto.RecommendationOutput) {
	if !rec.Available {
		_, _ = fmt.Fprintf(w, "no usage in the last %d days; record some activity first\n", rec.HistoryDays)
		return
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", headerColor.Sprint("start first window at"), rec.Start)
	_, _ = fmt.Fprintf(w, "earliest active hour  %02d:00\n", rec.EarliestActiveHour)
	_, _ = fmt.Fprintf(w, "expected utilization  %.1f%%\n", rec.ExpectedUtilization)
	_, _ = fmt.Fprintf(w, "confidence            %s (%d of %d days)\n",
		confidenceColor(rec.Confidence).Sprintf("%.0f%%", rec.Confidence*100), rec.DaysObserved, rec.HistoryDays)
}

func renderDay(w io.Writer, day recommenddto.DayOutput) {
	_, _ = fmt.Fprintf(w, "%s\n", headerColor.Sprint(day.Day))
	if len(day.Windows) == 0 {
		_, _ = fmt.Fprintln(w, "  no activity")
		return
	}
	for _, win := range day.Windows {
		_, _ = fmt.Fprintf(w, "  %s-%s\n", win.Start, win.End)
	}
	_, _ = fmt.Fprintf(w, "  expected %dh avg %.1f%% start %s confidence %s\n",
		day.TotalExpectedHours, day.AvgUsage, day.Start,
		confidenceColor(day.Confidence).Sprintf("%.0f%%", day.Confidence*100))
}

func renderWeek(w io.Writer, week recommenddto.WeekOutput) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DAY\tWINDOWS\tHOURS\tAVG\tSTART\tCONFIDENCE\t")
	for _, day := range week.Days {
		windows := make([]string, 0, len(day.Windows))
		for _, win := range day.Windows {
			windows = append(windows, win.Start+"-"+win.End)
		}
		spans := strings.Join(windows, ",")
		if spans == "" {
			spans = "-"
		}
		start := day.Start
		if start == "" {
			start = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f%%\t%s\t%.0f%%\t\n",
			day.Day, spans, day.TotalExpectedHours, day.AvgUsage, start, day.Confidence*100)
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(w, "based on %d days of history\n", week.HistoryDays)
}

func renderSchedule(w io.Writer, plan scheduledto.ScheduleOutput) {
	_, _ = fmt.Fprintf(w, "%s %s-%s (%d min)\n", headerColor.Sprint("workday"), plan.Start, plan.End, plan.TotalMinutes)
	for i, win := range plan.Windows {
		_, _ = fmt.Fprintf(w, "  #%d  %s -> %s\n", i+1, win.Start, win.End)
	}
	_, _ = fmt.Fprintf(w, "slack leading=%dm trailing=%dm min=%dm\n", plan.LeadingSlack, plan.TrailingSlack, plan.MinSlack)
}

func renderSyncStatus(w io.Writer, status syncdto.StatusOutput) {
	if !status.RemoteFound {
		_, _ = fmt.Fprintf(w, "no sync document at %s\n", status.Location)
		return
	}
	_, _ = fmt.Fprintf(w, "sync document %s\n", status.Location)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "MACHINE\tHOST\tHOURS\tUPDATED\t")
	for _, m := range status.Machines {
		id := m.MachineID
		if m.Local {
			id += " (local)"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t\n", id, m.Hostname, m.Hours, clock.ToISO(m.UpdatedAt))
	}
	_ = tw.Flush()
}
