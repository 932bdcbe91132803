package httptransport

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"veriseq/internal/ledger"
)

func sampleRecords() []ledger.Record {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []ledger.Record{
		{
			Timestamp: at,
			Module:    "utf8_two_byte",
			Harness:   "verify_utf8_two_byte_4chunks_0",
			Status:    ledger.StatusSuccess,
			Seconds:   0.42,
			Bound:     480,
		},
		{
			Timestamp: at.Add(time.Minute),
			Module:    "utf8_two_byte",
			Harness:   "verify_utf8_two_byte_4chunks_1",
			Status:    ledger.StatusTimeout,
			Seconds:   600,
			Bound:     480,
			Message:   "deadline exceeded",
		},
	}
}

func TestLedgerHandler_ListRecords(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		tr := newTestRouter(t)
		tr.ledger.EXPECT().
			Records(gomock.Any(), ledger.Filter{Module: "utf8_two_byte", Status: ledger.StatusSuccess}).
			Return(sampleRecords()[:1], nil)

		rec := tr.do(t, http.MethodGet, "/ledger?module=utf8_two_byte&status=SUCCESS", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var records []ledger.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		require.Len(t, records, 1)
		assert.Equal(t, "verify_utf8_two_byte_4chunks_0", records[0].Harness)
	})

	t.Run("unknown status maps to 400", func(t *testing.T) {
		tr := newTestRouter(t)
		tr.ledger.EXPECT().Records(gomock.Any(), gomock.Any()).Times(0)

		rec := tr.do(t, http.MethodGet, "/ledger?status=EXPLODED", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty ledger returns empty array", func(t *testing.T) {
		tr := newTestRouter(t)
		tr.ledger.EXPECT().Records(gomock.Any(), ledger.Filter{}).Return(nil, nil)

		rec := tr.do(t, http.MethodGet, "/ledger", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]\n", rec.Body.String())
	})
}

func TestLedgerHandler_ExportCSV(t *testing.T) {
	tr := newTestRouter(t)
	tr.ledger.EXPECT().Records(gomock.Any(), ledger.Filter{}).Return(sampleRecords(), nil)

	rec := tr.do(t, http.MethodGet, "/ledger.csv", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Timestamp,Module,Harness,Status,Time_Seconds,Exploration_Bound,Error_Message", lines[0])
	assert.Equal(t, "2025-06-01T12:00:00Z,utf8_two_byte,verify_utf8_two_byte_4chunks_0,SUCCESS,0.42,480,", lines[1])
	assert.Contains(t, lines[2], "TIMEOUT")
}

func TestLedgerHandler_Summary(t *testing.T) {
	tr := newTestRouter(t)
	tr.ledger.EXPECT().Records(gomock.Any(), ledger.Filter{}).Return(sampleRecords(), nil)

	rec := tr.do(t, http.MethodGet, "/ledger/summary", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var summary ledger.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.ByStatus[ledger.StatusSuccess])
	assert.Equal(t, 1, summary.ByStatus[ledger.StatusTimeout])
	assert.InDelta(t, 600.42, summary.Seconds, 0.001)
}
