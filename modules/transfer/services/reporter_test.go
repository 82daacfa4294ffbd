package services

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/sanjaithai/backoffice/modules/logging/domain/entities/transferlog"
	"github.com/sanjaithai/backoffice/modules/transfer/domain/entities/transfer"
	"github.com/sanjaithai/backoffice/pkg/metrics"
)

func TestReporter_WritesOneRow(t *testing.T) {
	logs := &logRecorder{}
	NewReporter(logs).Report(context.Background(), Entry{
		Kind: transferlog.KindImport, Mode: transfer.ModeUsers, Filename: "users.xlsx", Count: 4, PerformedBy: "admin",
	})
	require.Len(t, logs.entries, 1)
	require.Equal(t, "users", logs.entries[0].Mode)
	require.Equal(t, 4, logs.entries[0].Count)
}

func TestReporter_FailureIsCountedNotReturned(t *testing.T) {
	before := testutil.ToFloat64(metrics.AuditWriteFailuresTotal)
	logs := &logRecorder{err: errors.New("insert failed")}

	require.NotPanics(t, func() {
		NewReporter(logs).Report(context.Background(), Entry{Kind: transferlog.KindExport, Mode: transfer.ModeBoth})
	})
	require.Equal(t, before+1, testutil.ToFloat64(metrics.AuditWriteFailuresTotal))

	var nilReporter *Reporter
	require.NotPanics(t, func() { nilReporter.Report(context.Background(), Entry{}) })
}
