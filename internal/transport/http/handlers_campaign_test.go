package httptransport

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"veriseq/internal/campaign"
	"veriseq/internal/ledger"
	"veriseq/internal/partition"
	dErrors "veriseq/pkg/domain-errors"
)

func oneByteSpace() campaign.Space {
	return campaign.Space{
		Name:        "utf8_one_byte",
		Shape:       partition.Shape{{Lo: 0x00, Hi: 0x7F}},
		Expect:      campaign.ExpectAccept,
		ChunkCounts: []int{1, 2},
	}
}

func TestCampaignHandler_ListSpaces(t *testing.T) {
	tr := newTestRouter(t)
	tr.campaigns.EXPECT().Spaces().Return([]campaign.Space{oneByteSpace()})

	rec := tr.do(t, http.MethodGet, "/spaces", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var spaces []SpaceBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spaces))
	require.Len(t, spaces, 1)
	assert.Equal(t, "utf8_one_byte", spaces[0].Name)
	assert.Equal(t, uint64(128), spaces[0].Size)
	assert.Equal(t, "accept", spaces[0].Expect)
	assert.Equal(t, 1, spaces[0].DefaultChunks)
}

func TestCampaignHandler_Plan(t *testing.T) {
	t.Run("returns the planned harnesses", func(t *testing.T) {
		tr := newTestRouter(t)
		tr.campaigns.EXPECT().Plan("utf8_one_byte", 2).Return([]campaign.Harness{
			{
				Name:  "verify_utf8_one_byte_2chunks_0",
				Space: "utf8_one_byte",
				Chunk: partition.Chunk{Index: 0, Shape: partition.Shape{{Lo: 0x00, Hi: 0x3F}}},
				Of:    2,
			},
			{
				Name:  "verify_utf8_one_byte_2chunks_1",
				Space: "utf8_one_byte",
				Chunk: partition.Chunk{Index: 1, Shape: partition.Shape{{Lo: 0x40, Hi: 0x7F}}},
				Of:    2,
			},
		}, nil)

		rec := tr.do(t, http.MethodGet, "/spaces/utf8_one_byte/plan?chunks=2", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var plan []HarnessBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
		require.Len(t, plan, 2)
		assert.Equal(t, "verify_utf8_one_byte_2chunks_0", plan[0].Name)
		assert.Equal(t, uint64(64), plan[0].Bound)
		assert.Equal(t, 1, plan[1].Chunk)
	})

	t.Run("unknown space maps to 404", func(t *testing.T) {
		tr := newTestRouter(t)
		tr.campaigns.EXPECT().Plan("nope", 0).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "unknown space"))

		rec := tr.do(t, http.MethodGet, "/spaces/nope/plan", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-integer chunks maps to 400", func(t *testing.T) {
		tr := newTestRouter(t)
		tr.campaigns.EXPECT().Plan(gomock.Any(), gomock.Any()).Times(0)

		rec := tr.do(t, http.MethodGet, "/spaces/utf8_one_byte/plan?chunks=two", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCampaignHandler_StartCampaign(t *testing.T) {
	t.Run("starts and returns 202", func(t *testing.T) {
		tr := newTestRouter(t)
		started := campaign.Campaign{
			ID:        uuid.New(),
			Space:     "utf8_one_byte",
			Chunks:    2,
			State:     campaign.StatePending,
			CreatedAt: time.Now().UTC(),
		}
		tr.campaigns.EXPECT().
			Start(gomock.Any(), "utf8_one_byte", 2, true).
			Return(started, nil)

		rec := tr.do(t, http.MethodPost, "/campaigns",
			`{"space":"utf8_one_byte","chunks":2,"resume":true}`,
			"Authorization", "Bearer any-token")

		require.Equal(t, http.StatusAccepted, rec.Code)
		var got campaign.Campaign
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, started.ID, got.ID)
		assert.Equal(t, campaign.StatePending, got.State)
	})

	t.Run("missing space maps to 400", func(t *testing.T) {
		tr := newTestRouter(t)
		tr.campaigns.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		rec := tr.do(t, http.MethodPost, "/campaigns", `{"chunks":2}`,
			"Authorization", "Bearer any-token")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown space maps to 404", func(t *testing.T) {
		tr := newTestRouter(t)
		tr.campaigns.EXPECT().
			Start(gomock.Any(), "nope", 0, false).
			Return(campaign.Campaign{}, dErrors.New(dErrors.CodeNotFound, "unknown space"))

		rec := tr.do(t, http.MethodPost, "/campaigns", `{"space":"nope"}`,
			"Authorization", "Bearer any-token")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCampaignHandler_GetAndList(t *testing.T) {
	t.Run("get by id", func(t *testing.T) {
		tr := newTestRouter(t)
		id := uuid.New()
		tr.campaigns.EXPECT().Get(gomock.Any(), id).
			Return(campaign.Campaign{ID: id, Space: "utf8_one_byte", State: campaign.StateCompleted}, nil)

		rec := tr.do(t, http.MethodGet, "/campaigns/"+id.String(), "")

		require.Equal(t, http.StatusOK, rec.Code)
		var got campaign.Campaign
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, campaign.StateCompleted, got.State)
	})

	t.Run("invalid id maps to 400", func(t *testing.T) {
		tr := newTestRouter(t)

		rec := tr.do(t, http.MethodGet, "/campaigns/not-a-uuid", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list returns empty array not null", func(t *testing.T) {
		tr := newTestRouter(t)
		tr.campaigns.EXPECT().List(gomock.Any()).Return(nil, nil)

		rec := tr.do(t, http.MethodGet, "/campaigns", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]\n", rec.Body.String())
	})
}

func TestCampaignHandler_Cancel(t *testing.T) {
	t.Run("cancels a running campaign", func(t *testing.T) {
		tr := newTestRouter(t)
		id := uuid.New()
		tr.campaigns.EXPECT().Cancel(id).Return(nil)

		rec := tr.do(t, http.MethodPost, "/campaigns/"+id.String()+"/cancel", "",
			"Authorization", "Bearer any-token")

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("cancel of unknown campaign maps to 404", func(t *testing.T) {
		tr := newTestRouter(t)
		id := uuid.New()
		tr.campaigns.EXPECT().Cancel(id).
			Return(dErrors.New(dErrors.CodeNotFound, "campaign is not running"))

		rec := tr.do(t, http.MethodPost, "/campaigns/"+id.String()+"/cancel", "",
			"Authorization", "Bearer any-token")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("requires a bearer token", func(t *testing.T) {
		tr := newTestRouter(t)
		tr.campaigns.EXPECT().Cancel(gomock.Any()).Times(0)

		rec := tr.do(t, http.MethodPost, "/campaigns/"+uuid.NewString()+"/cancel", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCampaignHandler_ListHarnesses(t *testing.T) {
	tr := newTestRouter(t)
	sp := oneByteSpace()
	tr.campaigns.EXPECT().Spaces().Return([]campaign.Space{sp})
	tr.campaigns.EXPECT().Plan("utf8_one_byte", 1).Return([]campaign.Harness{
		{
			Name:  "verify_utf8_one_byte_1chunks_0",
			Space: "utf8_one_byte",
			Chunk: partition.Chunk{Index: 0, Shape: sp.Shape},
			Of:    1,
		},
	}, nil)

	rec := tr.do(t, http.MethodGet, "/harnesses", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var harnesses []HarnessBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &harnesses))
	require.Len(t, harnesses, 1)
	assert.Equal(t, "verify_utf8_one_byte_1chunks_0", harnesses[0].Name)
	assert.Equal(t, uint64(128), harnesses[0].Bound)
}

func TestCampaignHandler_CampaignLedger(t *testing.T) {
	t.Run("returns the campaign's slice of the ledger", func(t *testing.T) {
		tr := newTestRouter(t)
		id := uuid.New()
		tr.campaigns.EXPECT().Get(gomock.Any(), id).
			Return(campaign.Campaign{ID: id, Space: "utf8_two_byte"}, nil)
		tr.ledger.EXPECT().
			Records(gomock.Any(), ledger.Filter{Module: "utf8_two_byte"}).
			Return(sampleRecords(), nil)

		rec := tr.do(t, http.MethodGet, "/campaigns/"+id.String()+"/ledger", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var records []ledger.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		assert.Len(t, records, 2)
	})

	t.Run("csv export uses the canonical layout", func(t *testing.T) {
		tr := newTestRouter(t)
		id := uuid.New()
		tr.campaigns.EXPECT().Get(gomock.Any(), id).
			Return(campaign.Campaign{ID: id, Space: "utf8_two_byte"}, nil)
		tr.ledger.EXPECT().
			Records(gomock.Any(), ledger.Filter{Module: "utf8_two_byte"}).
			Return(sampleRecords(), nil)

		rec := tr.do(t, http.MethodGet, "/campaigns/"+id.String()+"/ledger.csv", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Body.String(),
			"Timestamp,Module,Harness,Status,Time_Seconds,Exploration_Bound,Error_Message\n"))
	})

	t.Run("unknown campaign maps to 404", func(t *testing.T) {
		tr := newTestRouter(t)
		id := uuid.New()
		tr.campaigns.EXPECT().Get(gomock.Any(), id).
			Return(campaign.Campaign{}, dErrors.New(dErrors.CodeNotFound, "campaign not found"))

		rec := tr.do(t, http.MethodGet, "/campaigns/"+id.String()+"/ledger", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
