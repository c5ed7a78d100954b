package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceType(t *testing.T) {
	assert.Equal(t, DeviceMobile, DeviceType("Mozilla/5.0 (Linux; Android 14) Mobile Safari"))
	assert.Equal(t, DeviceTablet, DeviceType("Mozilla/5.0 (iPad; CPU OS 17_0)"))
	assert.Equal(t, DeviceTablet, DeviceType("SomeTablet Browser"))
	assert.Equal(t, DeviceDesktop, DeviceType("Mozilla/5.0 (X11; Linux x86_64)"))
	assert.Equal(t, DeviceDesktop, DeviceType(""))
}

func TestNormalizeReferrer(t *testing.T) {
	assert.Equal(t, DirectReferrer, NormalizeReferrer("", ""))
	assert.Equal(t, DirectReferrer, NormalizeReferrer("not a url", ""))
	assert.Equal(t, "news.ycombinator.com", NormalizeReferrer("https://news.ycombinator.com/item?id=1", ""))
	assert.Equal(t, "github.com", NormalizeReferrer("https://WWW.GitHub.com/ada", ""))
	assert.Equal(t, DirectReferrer, NormalizeReferrer("https://showcase.example.com/p/ada/", "showcase.example.com"))
}

func TestNormalizeCountry(t *testing.T) {
	assert.Equal(t, UnknownCountry, NormalizeCountry(""))
	assert.Equal(t, UnknownCountry, NormalizeCountry("XX"))
	assert.Equal(t, "DE", NormalizeCountry(" de "))
}

func TestDailyAnalytics_Apply(t *testing.T) {
	d := &DailyAnalytics{}
	d.Apply(View{Referrer: "direct", Country: "US", Device: DeviceDesktop, Unique: true})
	d.Apply(View{Referrer: "direct", Country: "FR", Device: DeviceDesktop})
	d.Apply(View{ProjectID: "p-1"})

	assert.Equal(t, ViewCounts{Total: 2, Unique: 1}, d.Views)
	assert.Equal(t, []Counter{{Key: "direct", Count: 2}}, d.Referrers)
	assert.Len(t, d.Locations, 2)
	assert.Equal(t, []Counter{{Key: "p-1", Count: 1}}, d.ProjectViews)
}

func TestSummarize(t *testing.T) {
	from := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC)
	days := []*DailyAnalytics{
		{Date: "2024-02-29", Views: ViewCounts{Total: 100}},
		{Date: "2024-03-01", Views: ViewCounts{Total: 3, Unique: 2}, Referrers: []Counter{{"direct", 2}, {"github.com", 1}}},
		{Date: "2024-03-02", Views: ViewCounts{Total: 1, Unique: 1}, Referrers: []Counter{{"github.com", 1}}},
	}

	s := Summarize("sc-1", from, to, days)
	assert.Equal(t, "2024-03-01", s.From)
	assert.Equal(t, "2024-03-02", s.To)
	assert.EqualValues(t, 4, s.TotalViews)
	assert.EqualValues(t, 3, s.UniqueVisitors)
	require.Len(t, s.ViewsByDay, 2)
	assert.Equal(t, []Share{
		{Key: "direct", Count: 2, Percentage: 50},
		{Key: "github.com", Count: 2, Percentage: 50},
	}, s.Referrers)
	assert.Empty(t, s.ProjectViews)
}

func TestSummarize_LimitsTopEntries(t *testing.T) {
	day := &DailyAnalytics{Date: "2024-03-01"}
	for i := 0; i < TopEntries+5; i++ {
		day.Locations = append(day.Locations, Counter{Key: string(rune('A' + i)), Count: int64(i + 1)})
	}
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := Summarize("sc-1", at, at, []*DailyAnalytics{day})
	require.Len(t, s.Locations, TopEntries)
	assert.Equal(t, string(rune('A'+TopEntries+4)), s.Locations[0].Key)
}
