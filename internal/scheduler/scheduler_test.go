package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/hatchery/internal/config"
	"github.com/mamadbah2/hatchery/internal/service/audit"
)

type fakeReporter struct {
	digest string
	err    error
	days   []time.Time
}

func (f *fakeReporter) ExportDaily(_ context.Context, day time.Time) (string, error) {
	f.days = append(f.days, day)
	return f.digest, f.err
}

func TestNewSchedulerRejectsUnknownTimezone(t *testing.T) {
	_, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "Mars/Olympus"}, &fakeReporter{}, &audit.Recorder{}, nil)
	assert.Error(t, err)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "every evening", Timezone: "UTC"}, &fakeReporter{}, &audit.Recorder{}, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "UTC"}, &fakeReporter{}, &audit.Recorder{}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)
	s.Stop()
}

func TestDailyReportPostsDigest(t *testing.T) {
	reporter := &fakeReporter{digest: "Hatchery report (2024-05-02): no batches yet."}
	notes := &audit.Recorder{}
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "UTC"}, reporter, notes, nil)
	require.NoError(t, err)

	s.sendDailyReport()

	require.Len(t, reporter.days, 1)
	assert.Equal(t, time.UTC, reporter.days[0].Location())
	assert.Equal(t, []string{reporter.digest}, notes.For(reportEntity))
}

func TestDailyReportFailurePostsNothing(t *testing.T) {
	notes := &audit.Recorder{}
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "UTC"}, &fakeReporter{err: errors.New("sheets down")}, notes, nil)
	require.NoError(t, err)

	s.sendDailyReport()

	assert.Empty(t, notes.Notes())
}
