package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/NexxxT-x/TamagotchPy/internal/arena"
	"github.com/NexxxT-x/TamagotchPy/internal/combat"
	"github.com/NexxxT-x/TamagotchPy/internal/engine"
	"github.com/NexxxT-x/TamagotchPy/internal/game"
)

type mockReader struct {
	pets      map[string]*game.Pet
	records   []game.CombatRecord
	err       error
	lastLimit int
}

func (m *mockReader) GetPetByID(ctx context.Context, id string) (*game.Pet, error) {
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.pets[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReader) ListCombatRecords(ctx context.Context, petID string, limit int) ([]game.CombatRecord, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

type fixedLive struct {
	stats  arena.Stats
	combat combat.Update
}

func (f fixedLive) Stats() arena.Stats { return f.stats }

func (f fixedLive) Combat(sessionID string) (combat.Update, bool) {
	if sessionID != f.combat.SessionID {
		return combat.Update{}, false
	}
	return f.combat, true
}

type fixedSockets int

func (f fixedSockets) Connections() int { return int(f) }

func newTestRouter(repo *mockReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ws := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) }
	live := fixedLive{
		stats:  arena.Stats{Sessions: 2, Active: 1, Pending: 1, Connections: 3},
		combat: combat.Update{SessionID: "s1", TurnNumber: 4, TurnOwner: engine.SideB},
	}
	return NewRouter(NewArenaHandler(repo, live, fixedSockets(5)), ws)
}

func do(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthAndVersion(t *testing.T) {
	r := newTestRouter(&mockReader{})
	assert.Equal(t, http.StatusOK, do(r, "/healthz").Code)

	w := do(r, "/api/version")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "petarena", body["service"])
	assert.Equal(t, "dev", body["version"])
}

func TestWebSocketRouteIsMounted(t *testing.T) {
	r := newTestRouter(&mockReader{})
	assert.Equal(t, http.StatusTeapot, do(r, "/ws").Code)
}

func TestCombatStats(t *testing.T) {
	w := do(newTestRouter(&mockReader{}), "/api/combats/stats")
	require.Equal(t, http.StatusOK, w.Code)
	var st statsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, arena.Stats{Sessions: 2, Active: 1, Pending: 1, Connections: 3}, st.Stats)
	assert.Equal(t, 5, st.Sockets)
}

func TestGetCombat(t *testing.T) {
	r := newTestRouter(&mockReader{})

	w := do(r, "/api/combats/s1")
	require.Equal(t, http.StatusOK, w.Code)
	var u combat.Update
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	assert.Equal(t, 4, u.TurnNumber)
	assert.Equal(t, engine.SideB, u.TurnOwner)

	assert.Equal(t, http.StatusNotFound, do(r, "/api/combats/gone").Code)
	assert.Equal(t, http.StatusOK, do(r, "/api/combats/stats").Code, "the stats route is not shadowed")
}

func TestGetPet(t *testing.T) {
	repo := &mockReader{pets: map[string]*game.Pet{"rex": {ID: "rex", Name: "Rex", MaxHealth: 50, Health: 40, Wins: 2}}}
	r := newTestRouter(repo)

	w := do(r, "/api/pets/rex")
	require.Equal(t, http.StatusOK, w.Code)
	var p game.Pet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "Rex", p.Name)
	assert.Equal(t, 2, p.Wins)

	assert.Equal(t, http.StatusNotFound, do(r, "/api/pets/ghost").Code)

	repo.err = errors.New("boom")
	assert.Equal(t, http.StatusInternalServerError, do(r, "/api/pets/rex").Code)
}

func TestListPetCombats(t *testing.T) {
	repo := &mockReader{records: []game.CombatRecord{{SessionID: "s1", Reason: "defeat"}}}
	r := newTestRouter(repo)

	w := do(r, "/api/pets/rex/combats?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, repo.lastLimit)
	var recs []game.CombatRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "s1", recs[0].SessionID)

	do(r, "/api/pets/rex/combats?limit=5000")
	assert.Equal(t, 20, repo.lastLimit, "out of range limits fall back to the default")
}
