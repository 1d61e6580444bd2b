// Package views contains the role-specific projections over the case and
// account lists. Every function is pure: it filters, sorts and aggregates
// copies without touching the stores.
package views

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hopespot/rescue-server/internal/models"
)

// StatusBucket groups statuses for report filtering.
type StatusBucket string

const (
	BucketAll        StatusBucket = "all"
	BucketCompleted  StatusBucket = "completed"
	BucketPending    StatusBucket = "pending"
	BucketInProgress StatusBucket = "in-progress"
)

// InProgress reports whether the status counts as actively being worked.
func InProgress(s models.Status) bool {
	switch models.NormalizeStatus(s) {
	case models.StatusAssigned, models.StatusOnTheWay, models.StatusReached:
		return true
	}
	return false
}

// HelperView returns all cases, newest first. Helpers have no reporter
// identity, so every helper sees the full list.
func HelperView(cases []models.RescueCase) []models.RescueCase {
	out := append([]models.RescueCase(nil), cases...)
	sortNewestFirst(out)
	return out
}

// RescuerView is the offer pool plus the rescuer's own active cases:
// everything not completed, minus cases the rescuer already declined.
func RescuerView(cases []models.RescueCase, rescuerID string) []models.RescueCase {
	out := make([]models.RescueCase, 0, len(cases))
	for _, c := range cases {
		if models.NormalizeStatus(c.Status) == models.StatusCompleted {
			continue
		}
		if c.RejectedByContains(rescuerID) {
			continue
		}
		out = append(out, c)
	}
	sortNewestFirst(out)
	return out
}

// AdminView returns all cases, optionally filtered to one status.
func AdminView(cases []models.RescueCase, status models.Status) []models.RescueCase {
	out := make([]models.RescueCase, 0, len(cases))
	for _, c := range cases {
		if status != "" && models.NormalizeStatus(c.Status) != models.NormalizeStatus(status) {
			continue
		}
		out = append(out, c)
	}
	sortNewestFirst(out)
	return out
}

// ReportQuery narrows the report projection.
type ReportQuery struct {
	Search   string
	Bucket   StatusBucket
	DateFrom time.Time // zero means unbounded
	DateTo   time.Time // zero means unbounded; interpreted as end of that day
}

// Report returns cases matching the query, sorted descending by timestamp.
// Search is a case-insensitive substring match OR'd across helper name,
// helper phone, location, notes, assigned rescuer and case id. The date
// range is inclusive: [from 00:00, to 23:59:59.999].
func Report(cases []models.RescueCase, q ReportQuery) []models.RescueCase {
	var from, to time.Time
	if !q.DateFrom.IsZero() {
		from = startOfDay(q.DateFrom)
	}
	if !q.DateTo.IsZero() {
		to = endOfDay(q.DateTo)
	}
	needle := strings.ToLower(q.Search)

	out := make([]models.RescueCase, 0, len(cases))
	for _, c := range cases {
		if !inBucket(c.Status, q.Bucket) {
			continue
		}
		if !from.IsZero() && c.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && c.CreatedAt.After(to) {
			continue
		}
		if needle != "" && !matchesSearch(c, needle) {
			continue
		}
		out = append(out, c)
	}
	sortNewestFirst(out)
	return out
}

func inBucket(s models.Status, b StatusBucket) bool {
	s = models.NormalizeStatus(s)
	switch b {
	case "", BucketAll:
		return true
	case BucketCompleted:
		return s == models.StatusCompleted
	case BucketPending:
		return s == models.StatusPending
	case BucketInProgress:
		return InProgress(s)
	}
	return false
}

func matchesSearch(c models.RescueCase, needle string) bool {
	fields := []string{
		c.HelperName,
		c.HelperPhone,
		c.Location,
		c.Notes,
		c.AssignedRescuer,
		c.ID,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// RescuerStats aggregates one rescuer's caseload for reports.
type RescuerStats struct {
	Name           string  `json:"name"`
	TotalCases     int     `json:"totalCases"`
	Completed      int     `json:"completed"`
	InProgress     int     `json:"inProgress"`
	Pending        int     `json:"pending"`
	CompletionRate float64 `json:"completionRate"`
}

// RescuerStatistics tallies cases per assigned rescuer label, sorted
// descending by total case count. Completion rate is completed/total*100.
func RescuerStatistics(cases []models.RescueCase) []RescuerStats {
	byName := make(map[string]*RescuerStats)
	var order []string
	for _, c := range cases {
		if c.AssignedRescuer == "" {
			continue
		}
		st, ok := byName[c.AssignedRescuer]
		if !ok {
			st = &RescuerStats{Name: c.AssignedRescuer}
			byName[c.AssignedRescuer] = st
			order = append(order, c.AssignedRescuer)
		}
		st.TotalCases++
		switch models.NormalizeStatus(c.Status) {
		case models.StatusCompleted:
			st.Completed++
		case models.StatusPending:
			st.Pending++
		default:
			st.InProgress++
		}
	}

	out := make([]RescuerStats, 0, len(order))
	for _, name := range order {
		st := byName[name]
		if st.TotalCases > 0 {
			st.CompletionRate = float64(st.Completed) / float64(st.TotalCases) * 100
		}
		out = append(out, *st)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalCases > out[j].TotalCases })
	return out
}

// DirectoryEntry pairs a rescuer account with its caseload tallies.
type DirectoryEntry struct {
	Account    models.PublicAccount `json:"account"`
	TotalCases int                  `json:"totalCases"`
	Completed  int                  `json:"completed"`
	Active     int                  `json:"active"`
}

// RescuerDirectory lists all accounts in insertion order with per-account
// tallies computed from the case list.
func RescuerDirectory(accounts []models.RescuerAccount, cases []models.RescueCase) []DirectoryEntry {
	out := make([]DirectoryEntry, 0, len(accounts))
	for _, a := range accounts {
		e := DirectoryEntry{Account: a.Public()}
		for _, c := range cases {
			if c.RescuerID != a.ID {
				continue
			}
			e.TotalCases++
			switch models.NormalizeStatus(c.Status) {
			case models.StatusCompleted:
				e.Completed++
			case models.StatusPending:
			default:
				e.Active++
			}
		}
		out = append(out, e)
	}
	return out
}

// Summary is the headline block of the report dashboard.
type Summary struct {
	Total              int     `json:"total"`
	Completed          int     `json:"completed"`
	Pending            int     `json:"pending"`
	InProgress         int     `json:"inProgress"`
	CompletionRate     float64 `json:"completionRate"`
	AvgResponseMinutes int     `json:"avgResponseMinutes"`
	AvgResponseTime    string  `json:"avgResponseTime"`
}

// Summarize computes totals, the overall completion rate and the average
// response time: mean age of completed cases relative to now, floored to
// whole minutes. With no completed cases the average reads "N/A".
func Summarize(cases []models.RescueCase, now time.Time) Summary {
	s := Summary{AvgResponseTime: "N/A"}
	s.Total = len(cases)
	var completedAge time.Duration
	for _, c := range cases {
		switch models.NormalizeStatus(c.Status) {
		case models.StatusCompleted:
			s.Completed++
			completedAge += now.Sub(c.CreatedAt)
		case models.StatusPending:
			s.Pending++
		default:
			s.InProgress++
		}
	}
	if s.Total > 0 {
		s.CompletionRate = float64(s.Completed) / float64(s.Total) * 100
	}
	if s.Completed > 0 {
		s.AvgResponseMinutes = int((completedAge / time.Duration(s.Completed)).Minutes())
		s.AvgResponseTime = formatMinutes(s.AvgResponseMinutes)
	}
	return s
}

func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", m/60, m%60)
}

func sortNewestFirst(cases []models.RescueCase) {
	sort.SliceStable(cases, func(i, j int) bool {
		if cases[i].CreatedAt.Equal(cases[j].CreatedAt) {
			// ids are monotonic enough to break creation-time ties
			return cases[i].ID > cases[j].ID
		}
		return cases[i].CreatedAt.After(cases[j].CreatedAt)
	})
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, t.Location())
}
