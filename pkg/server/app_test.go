package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/knowledgemap/pkg/knowledge/canvas"
	"github.com/recera/knowledgemap/pkg/knowledge/graph"
	"github.com/recera/knowledgemap/pkg/live"
	"github.com/recera/knowledgemap/pkg/vango/vdom"
)

func testDocument() graph.Document {
	return graph.Document{
		Topics: []graph.RawTopic{
			{ID: "a", Label: "Alpha", Position: &graph.Point{X: 0, Y: 0}},
			{ID: "b", Label: "Beta", Position: &graph.Point{X: 100, Y: 0}},
		},
		Links: []graph.RawLink{{Source: "a", Target: "b"}},
	}
}

func TestApp_Page(t *testing.T) {
	app := NewApp(testDocument(), nil)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html><html lang=\"en\">"))
	assert.Contains(t, body, `id="node-a"`)
	assert.Contains(t, body, ".knowledge-map")
	assert.Contains(t, body, `name="knowledge-session"`)
	assert.Contains(t, body, "/live/")
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	// every page load gets its own session
	other := httptest.NewRecorder()
	app.ServeHTTP(other, httptest.NewRequest(http.MethodGet, "/", nil))
	id := regexp.MustCompile(`name="knowledge-session" content="([0-9a-f]+)"`)
	first := id.FindStringSubmatch(body)
	second := id.FindStringSubmatch(other.Body.String())
	require.Len(t, first, 2)
	require.Len(t, second, 2)
	assert.NotEqual(t, first[1], second[1])
}

func TestApp_GraphAPI(t *testing.T) {
	app := NewApp(testDocument(), []AppOption{WithRelax(true)})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/graph", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var doc graph.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Len(t, doc.Topics, 2)

	// relaxation pushed the pair apart
	a, b := doc.Topics[0].Position, doc.Topics[1].Position
	assert.GreaterOrEqual(t, b.X-a.X, 190.0-1e-6)
}

func TestApp_SetDocument(t *testing.T) {
	app := NewApp(testDocument(), nil)
	app.SetDocument(graph.Document{Topics: []graph.RawTopic{{ID: "solo", Label: "Solo"}}})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/graph", nil))

	var doc graph.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Len(t, doc.Topics, 1)
	assert.Equal(t, "solo", doc.Topics[0].ID)
}

func TestApp_Health(t *testing.T) {
	app := NewApp(testDocument(), nil)

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","sessions":0}`, w.Body.String())
}

func TestApp_SessionGraph(t *testing.T) {
	app := NewApp(testDocument(), nil)
	ts := httptest.NewServer(app)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/graph/nobody")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + live.Prefix + "s1"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))

	// hello and the scene
	for i := 0; i < 2; i++ {
		_, _, err = ws.ReadMessage()
		require.NoError(t, err)
	}

	session, ok := app.Live().GetSession("s1")
	require.True(t, ok)
	session.Canvas(func(c *canvas.Canvas) {
		c.Store().SetPosition("b", graph.Point{X: 300, Y: 40})
	})

	resp, err = http.Get(ts.URL + "/api/graph/s1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc graph.Document
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, graph.Point{X: 300, Y: 40}, *doc.Topics[1].Position)
}

func TestInjectLiveClient(t *testing.T) {
	doc := Shell("t").Wrap(vdom.NewText("x"))
	doc = InjectLiveClient(doc, "abc")

	head, body := doc.Kids[0], doc.Kids[1]
	meta := head.Kids[len(head.Kids)-1]
	assert.Equal(t, "abc", meta.Props["content"])
	script := body.Kids[len(body.Kids)-1]
	assert.Equal(t, "script", script.Tag)
	assert.Contains(t, script.Kids[0].Text, "applyPatches")

	text := vdom.NewText("plain")
	assert.Same(t, text, InjectLiveClient(text, "abc"))
}
