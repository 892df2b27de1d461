package texts

import (
	"strings"
	"testing"
	"time"
)

func TestSign(t *testing.T) {
	t.Cleanup(func() { SetSignature("") })
	if Sign("hi") != "hi" {
		t.Fatalf("empty signature changed message")
	}
	SetSignature("lecturebot")
	if got := Sign("hi"); got != "hi\n\nlecturebot" {
		t.Fatalf("unexpected signed message %q", got)
	}
}

func TestStatsReportUptime(t *testing.T) {
	out := StatsReport(Stats{Uptime: 50*time.Hour + 7*time.Minute, Lectures: 4})
	if !strings.Contains(out, "2 يوم, 2 ساعة, 7 دقيقة") {
		t.Fatalf("unexpected uptime line:\n%s", out)
	}
}

func TestSetupSummaryListsGroups(t *testing.T) {
	out := SetupSummary("Law", []SetupClassSummary{{
		Name:     "S1",
		Subjects: []string{"Civil", "Penal"},
		Groups:   []SetupGroupLine{{Group: "A", Professor: "Dr X"}},
	}})
	for _, want := range []string{"الشعبة: Law", "الفصل 1: S1", "Civil، Penal", "A (الأستاذ: Dr X)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary misses %q:\n%s", want, out)
		}
	}
}
