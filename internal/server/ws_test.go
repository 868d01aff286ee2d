package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpaceArmada/internal/game"
)

const patrolMission = `{
	"title": "Patrol",
	"teams": [{"id": "empire"}, {"id": "rebels"}],
	"spacecrafts": [
		{"id": "player", "class": "falcon", "team": "empire", "piloted": true, "position": [0, 0, 0]},
		{"id": "scout", "class": "falcon", "team": "rebels", "ai": "none", "position": [0, 3000, 0]}
	]
}`

// nobody flies it: lost on the first step
const derelictMission = `{
	"spacecrafts": [{"id": "hulk", "class": "aries", "ai": "none", "position": [0, 0, 0]}]
}`

func newTestServer(t *testing.T, records game.RecordStore) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(Dependencies{Records: records, Hz: 120})
	srv := httptest.NewServer(NewMux(hub, nil))
	t.Cleanup(func() {
		srv.Close()
		hub.Shutdown()
	})
	return hub, srv
}

func postMission(t *testing.T, srv *httptest.Server, query, doc string) (*http.Response, createBattleResponse) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/battles"+query, "application/json", strings.NewReader(doc))
	require.NoError(t, err)
	defer resp.Body.Close()
	var body createBattleResponse
	if resp.StatusCode == http.StatusCreated {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp, body
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestCreateAndListBattles(t *testing.T) {
	_, srv := newTestServer(t, nil)

	resp, created := postMission(t, srv, "?name=patrol&seed=3", patrolMission)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "patrol", created.Name)
	assert.Equal(t, "/ws?battle="+created.ID, created.Stream)
	assert.Equal(t, "Patrol", created.State.Title)
	assert.Len(t, created.State.Crafts, 2)

	list, err := http.Get(srv.URL + "/battles")
	require.NoError(t, err)
	defer list.Body.Close()
	var infos []BattleInfo
	require.NoError(t, json.NewDecoder(list.Body).Decode(&infos))
	require.Len(t, infos, 1)
	assert.Equal(t, created.ID, infos[0].ID)

	one, err := http.Get(srv.URL + "/battles/" + created.ID)
	require.NoError(t, err)
	one.Body.Close()
	assert.Equal(t, http.StatusOK, one.StatusCode)
}

func TestCreateBattleErrors(t *testing.T) {
	_, srv := newTestServer(t, nil)

	resp, _ := postMission(t, srv, "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = postMission(t, srv, "", `{"spacecrafts": [`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	missing, err := http.Get(srv.URL + "/battles/nope")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	ws, err := http.Get(srv.URL + "/ws?battle=nope")
	require.NoError(t, err)
	ws.Body.Close()
	assert.Equal(t, http.StatusNotFound, ws.StatusCode)
}

func TestStreamJSONSnapshots(t *testing.T) {
	_, srv := newTestServer(t, nil)
	_, created := postMission(t, srv, "", patrolMission)

	conn := dial(t, srv, created.Stream)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var last float64
	for range 3 {
		msgType, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, msgType)
		var msg streamMsg
		require.NoError(t, json.Unmarshal(data, &msg))
		require.Equal(t, msgSnapshot, msg.Type)
		assert.Equal(t, created.ID, msg.Battle)
		assert.GreaterOrEqual(t, msg.Snapshot.Elapsed, last)
		last = msg.Snapshot.Elapsed
	}
}

func TestStreamProtoSnapshots(t *testing.T) {
	_, srv := newTestServer(t, nil)
	_, created := postMission(t, srv, "", patrolMission)

	conn := dial(t, srv, created.Stream+"&format=proto")
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	msgType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, msgType)

	fields, err := decodeProto(data)
	require.NoError(t, err)
	assert.Equal(t, msgSnapshot, fields["type"])
	snap, ok := fields["snapshot"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Patrol", snap["title"])
	assert.Len(t, snap["crafts"], 2)
}

func TestBattleEndRecordsAndClosesStream(t *testing.T) {
	records := game.NewMemoryRecordStore()
	hub, srv := newTestServer(t, records)
	_, created := postMission(t, srv, "?name=derelict", derelictMission)

	lb, err := hub.Get(created.ID)
	require.NoError(t, err)
	select {
	case <-lb.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("battle did not end")
	}
	assert.True(t, lb.Result().Lost)

	rec, err := records.LoadRecord("derelict")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.LossCount)

	conn := dial(t, srv, created.Stream)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var types []string
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var msg streamMsg
		require.NoError(t, json.Unmarshal(data, &msg))
		types = append(types, msg.Type)
	}
	assert.Equal(t, []string{msgSnapshot, msgResult}, types)
}

func TestStopBattle(t *testing.T) {
	hub, srv := newTestServer(t, nil)
	_, created := postMission(t, srv, "", patrolMission)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/battles/"+created.ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	lb, err := hub.Get(created.ID)
	require.NoError(t, err)
	assert.True(t, lb.Finished())
	assert.False(t, lb.Result().Won)

	assert.Equal(t, 1, hub.CleanupFinished(0))
	_, err = hub.Get(created.ID)
	assert.ErrorIs(t, err, ErrBattleNotFound)
}

func TestCleanupCountsFromFinish(t *testing.T) {
	hub, srv := newTestServer(t, nil)
	_, created := postMission(t, srv, "", derelictMission)
	lb, err := hub.Get(created.ID)
	require.NoError(t, err)
	select {
	case <-lb.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("battle did not end")
	}
	require.False(t, lb.FinishedAt().IsZero())
	assert.False(t, lb.FinishedAt().Before(lb.Created))
	require.NotNil(t, lb.Info().FinishedAt)

	// a battle that ran for an hour still gets its full grace after ending
	lb.Created = lb.Created.Add(-time.Hour)
	assert.Zero(t, hub.CleanupFinished(10*time.Minute))
	_, err = hub.Get(created.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, hub.CleanupFinished(0))
}

func TestSettingsOverrides(t *testing.T) {
	values := map[string][]string{
		"deathGracePeriod":  {"0.25"},
		"hideHitboxes":      {"true"},
		"teamSurvivalBonus": {"oops"},
		"seed":              {"9"},
	}
	o := parseSettingsOverrides(values)
	s := o.apply(game.DefaultSettings())
	assert.Equal(t, 0.25, s.DeathGracePeriod)
	assert.True(t, s.HideHitboxes)
	assert.Equal(t, float64(game.DefaultTeamSurvivalBonus), s.TeamSurvivalBonus)
	require.NotNil(t, o.Seed)
	assert.Equal(t, int64(9), *o.Seed)
}

func TestHubKeepsSettingOverrides(t *testing.T) {
	hub := NewHub(Dependencies{Settings: game.Settings{HideHitboxes: true, HullIntegrityBonus: 75}})
	t.Cleanup(hub.Shutdown)
	assert.True(t, hub.deps.Settings.HideHitboxes)
	assert.Equal(t, 75.0, hub.deps.Settings.HullIntegrityBonus)
	assert.Equal(t, game.DefaultPerformanceLevels(), hub.deps.Settings.PerformanceLevels)
}

func TestProtoErrorFrame(t *testing.T) {
	data, err := encodeProto(streamMsg{Type: msgError, Battle: "b", Error: "boom"})
	require.NoError(t, err)
	fields, err := decodeProto(data)
	require.NoError(t, err)
	assert.Equal(t, "boom", fields["error"])
	assert.False(t, bytes.Contains(data, []byte("snapshot")))
}

func TestReplayHistory(t *testing.T) {
	hub, srv := newTestServer(t, nil)
	_, created := postMission(t, srv, "", patrolMission)
	lb, err := hub.Get(created.ID)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return lb.History().Len() >= 2 }, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get(srv.URL + "/battles/" + created.ID + "/history?at=0.05")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap struct {
		Elapsed float64 `json:"elapsed"`
		Crafts  []any   `json:"crafts"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Len(t, snap.Crafts, 2)

	bad, err := http.Get(srv.URL + "/battles/" + created.ID + "/history?at=soon")
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}
