//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/pokerledger/tracker/internal/domain"
	"github.com/pokerledger/tracker/internal/outbox"
	"github.com/pokerledger/tracker/internal/repository"
	"github.com/pokerledger/tracker/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tournament(date string) map[string]interface{} {
	return map[string]interface{}{
		"played_date":  date,
		"venue":        "Club A",
		"session_type": "TOURNAMENT",
		"tour_format":  "SNG",
		"stake_amount": 3000,
		"entries":      2,
		"fees":         200,
		"cashout":      10000,
	}
}

func TestCreate_NumbersPerDate(t *testing.T) {
	env := testutil.NewTestEnv(t)

	a := env.CreateSession(tournament("2024-01-01"))
	b := env.CreateSession(tournament("2024-01-02"))
	c := env.CreateSession(tournament("2024-01-01"))

	assert.EqualValues(t, 1, a["session_no"])
	assert.EqualValues(t, 1, b["session_no"])
	assert.EqualValues(t, 2, c["session_no"])
	assert.Equal(t, "TOUR_SNG", a["stake_code"])
	assert.EqualValues(t, 6200, a["cost_net"])
	assert.EqualValues(t, 3800, a["profit_total"])
}

func TestCreate_ConcurrentSameDate(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ctx := context.Background()

	const n = 12
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stake := int64(1000)
			errs <- env.Store.Create(ctx, &domain.Session{
				PlayedDate:  "2024-02-02",
				Venue:       "Club A",
				Type:        domain.SessionTournament,
				StakeCode:   "TOUR_OTHER",
				StakeAmount: &stake,
				Entries:     1,
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	list, err := env.Store.List(ctx)
	require.NoError(t, err)
	nos := make([]int, 0, len(list))
	for _, s := range list {
		nos = append(nos, s.SessionNo)
	}
	sort.Ints(nos)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, nos)
}

func TestDelete_RequiresAdminAndKeepsNumbers(t *testing.T) {
	env := testutil.NewTestEnv(t)

	env.CreateSession(tournament("2024-03-03"))
	second := env.CreateSession(tournament("2024-03-03"))
	env.CreateSession(tournament("2024-03-03"))
	id := int64(second["id"].(float64))

	resp := env.Do(http.MethodDelete, "/sessions/"+strconv.FormatInt(id, 10), nil, "")
	resp.Body.Close()
	testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	assert.Equal(t, 3, env.CountRows("poker_sessions"))

	resp = env.Do(http.MethodDelete, "/sessions/"+strconv.FormatInt(id, 10), nil, env.AdminToken)
	resp.Body.Close()
	testutil.AssertStatus(t, resp, http.StatusOK)

	resp = env.Do(http.MethodDelete, "/sessions/"+strconv.FormatInt(id, 10), nil, env.AdminToken)
	resp.Body.Close()
	testutil.AssertStatus(t, resp, http.StatusOK)

	var list []map[string]interface{}
	testutil.DecodeJSON(t, env.GET("/sessions"), &list)
	require.Len(t, list, 2)
	assert.EqualValues(t, 1, list[0]["session_no"])
	assert.EqualValues(t, 3, list[1]["session_no"])
}

func TestOutbox_RecordsCreateAndDelete(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ctx := context.Background()

	rec := env.CreateSession(tournament("2024-04-04"))
	removed, err := env.Store.Delete(ctx, int64(rec["id"].(float64)))
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = env.Store.Delete(ctx, 999999)
	require.NoError(t, err)
	assert.False(t, removed)

	repo := repository.NewOutboxRepository()
	rows, err := repo.FetchUnpublished(ctx, env.Pool, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.EventSessionCreated, rows[0].EventType)
	assert.Equal(t, domain.EventSessionDeleted, rows[1].EventType)
	assert.Equal(t, "2024-04-04", rows[0].PartitionKey)

	pub := &recordingPublisher{}
	relay := outbox.NewRelay(env.Pool, repo, pub, slog.New(slog.NewTextHandler(io.Discard, nil)), outbox.Options{TopicPrefix: "test"})
	n, err := relay.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"test.session.created", "test.session.deleted"}, pub.topics)

	rows, err = repo.FetchUnpublished(ctx, env.Pool, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStats_Public(t *testing.T) {
	env := testutil.NewTestEnv(t)

	env.CreateSession(tournament("2024-05-01"))
	loss := tournament("2024-05-02")
	loss["cashout"] = 0
	env.CreateSession(loss)

	var report struct {
		Summary struct {
			Count       int     `json:"count"`
			MaxDrawdown float64 `json:"max_drawdown"`
		} `json:"summary"`
	}
	testutil.DecodeJSON(t, env.GET("/stats"), &report)
	assert.Equal(t, 2, report.Summary.Count)
	assert.InDelta(t, 6200.0, report.Summary.MaxDrawdown, 1e-9)
}

type recordingPublisher struct {
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _, _ []byte) error {
	p.topics = append(p.topics, topic)
	return nil
}
