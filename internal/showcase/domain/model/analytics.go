package model

import (
	"math"
	"net/url"
	"sort"
	"strings"
	"time"
)

// DateLayout is the day key of analytics documents.
const DateLayout = "2006-01-02"

// Devices recognised from the user agent.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

const (
	DirectReferrer = "direct"
	UnknownCountry = "unknown"
	// TopEntries bounds the referrer and location lists of a summary.
	TopEntries = 10
)

// Counter counts one key, such as a referrer host or a project id.
type Counter struct {
	Key   string `json:"key" bson:"key"`
	Count int64  `json:"count" bson:"count"`
}

type ViewCounts struct {
	Total  int64 `json:"total" bson:"total"`
	Unique int64 `json:"unique" bson:"unique"`
}

// DailyAnalytics aggregates the views of one showcase on one UTC day.
type DailyAnalytics struct {
	ID           string     `json:"id" bson:"_id"`
	ShowcaseID   string     `json:"showcaseId" bson:"showcase_id"`
	Date         string     `json:"date" bson:"date"`
	Views        ViewCounts `json:"views" bson:"views"`
	ProjectViews []Counter  `json:"projectViews" bson:"project_views"`
	Referrers    []Counter  `json:"referrers" bson:"referrers"`
	Locations    []Counter  `json:"locations" bson:"locations"`
	Devices      []Counter  `json:"devices" bson:"devices"`
}

// DailyID is the document id of a showcase's day.
func DailyID(showcaseID, date string) string { return showcaseID + ":" + date }

// View is a single page view to be recorded.
type View struct {
	ShowcaseID string
	At         time.Time
	Referrer   string
	Country    string
	Device     string
	ProjectID  string
	Unique     bool
}

// Day returns the UTC day key of the view.
func (v View) Day() string { return v.At.UTC().Format(DateLayout) }

// IsProjectView reports whether v counts a project opened on the page rather than
// the page itself.
func (v View) IsProjectView() bool { return v.ProjectID != "" }

// Apply adds the view to d. Project views only count towards their project.
func (d *DailyAnalytics) Apply(v View) {
	if v.IsProjectView() {
		d.ProjectViews = bump(d.ProjectViews, v.ProjectID)
		return
	}
	d.Views.Total++
	if v.Unique {
		d.Views.Unique++
	}
	d.Referrers = bump(d.Referrers, v.Referrer)
	d.Locations = bump(d.Locations, v.Country)
	d.Devices = bump(d.Devices, v.Device)
}

func bump(counters []Counter, key string) []Counter {
	for i := range counters {
		if counters[i].Key == key {
			counters[i].Count++
			return counters
		}
	}
	return append(counters, Counter{Key: key, Count: 1})
}

// DeviceType classifies a user agent.
func DeviceType(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "mobile"):
		return DeviceMobile
	case strings.Contains(ua, "tablet"), strings.Contains(ua, "ipad"):
		return DeviceTablet
	}
	return DeviceDesktop
}

// NormalizeReferrer reduces a referrer URL to its host. Empty or unparsable
// referrers, and those from selfHost, count as direct.
func NormalizeReferrer(referrer, selfHost string) string {
	if referrer == "" {
		return DirectReferrer
	}
	u, err := url.Parse(referrer)
	if err != nil || u.Hostname() == "" {
		return DirectReferrer
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if selfHost != "" && host == strings.TrimPrefix(strings.ToLower(selfHost), "www.") {
		return DirectReferrer
	}
	return host
}

// NormalizeCountry upper-cases a country code, defaulting to unknown.
func NormalizeCountry(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || code == "XX" {
		return UnknownCountry
	}
	return strings.ToUpper(code)
}

// Share is a counter with its percentage of the category total.
type Share struct {
	Key        string  `json:"key"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type DayViews struct {
	Date   string `json:"date"`
	Total  int64  `json:"total"`
	Unique int64  `json:"unique"`
}

// Summary aggregates daily documents over a date range.
type Summary struct {
	ShowcaseID     string     `json:"showcaseId"`
	From           string     `json:"from"`
	To             string     `json:"to"`
	TotalViews     int64      `json:"totalViews"`
	UniqueVisitors int64      `json:"uniqueVisitors"`
	ViewsByDay     []DayViews `json:"viewsByDay"`
	ProjectViews   []Share    `json:"projectViews"`
	Referrers      []Share    `json:"referrers"`
	Locations      []Share    `json:"locations"`
	Devices        []Share    `json:"devices"`
}

// Summarize folds the days between from and to, inclusive, into a summary. Days
// without views appear with zero counts.
func Summarize(showcaseID string, from, to time.Time, days []*DailyAnalytics) *Summary {
	from = truncateDay(from)
	to = truncateDay(to)
	s := &Summary{
		ShowcaseID: showcaseID,
		From:       from.Format(DateLayout),
		To:         to.Format(DateLayout),
	}

	byDate := make(map[string]*DailyAnalytics, len(days))
	projects := map[string]int64{}
	referrers := map[string]int64{}
	locations := map[string]int64{}
	devices := map[string]int64{}
	for _, d := range days {
		if d.Date < s.From || d.Date > s.To {
			continue
		}
		byDate[d.Date] = d
		s.TotalViews += d.Views.Total
		s.UniqueVisitors += d.Views.Unique
		add(projects, d.ProjectViews)
		add(referrers, d.Referrers)
		add(locations, d.Locations)
		add(devices, d.Devices)
	}

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(DateLayout)
		dv := DayViews{Date: key}
		if d, ok := byDate[key]; ok {
			dv.Total = d.Views.Total
			dv.Unique = d.Views.Unique
		}
		s.ViewsByDay = append(s.ViewsByDay, dv)
	}

	s.ProjectViews = shares(projects, 0)
	s.Referrers = shares(referrers, TopEntries)
	s.Locations = shares(locations, TopEntries)
	s.Devices = shares(devices, 0)
	return s
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func add(into map[string]int64, counters []Counter) {
	for _, c := range counters {
		into[c.Key] += c.Count
	}
}

// shares orders counts by count then key and keeps the first limit entries when limit
// is positive. Percentages are of the whole category and rounded to two decimals.
func shares(counts map[string]int64, limit int) []Share {
	var total int64
	out := make([]Share, 0, len(counts))
	for k, n := range counts {
		total += n
		out = append(out, Share{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Percentage = math.Round(float64(out[i].Count)/float64(total)*10000) / 100
	}
	return out
}
