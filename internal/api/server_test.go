package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/canopyhq/canopy/pkg/pipeline"
	"github.com/canopyhq/canopy/pkg/scene"
	"github.com/canopyhq/canopy/pkg/stacking"
	"github.com/canopyhq/canopy/pkg/store"
)

func f(v float64) *float64 { return &v }

func testDocument() scene.Document {
	return scene.Document{
		Nodes: []scene.NodeRecord{
			{ID: "s1", X: 10, Y: 10, Width: f(200), Height: f(150)},
			{ID: "n1", Parent: "s1", X: 5, Y: 5, Width: f(40), Height: f(40)},
			{ID: "n2", X: 300, Y: 10, Width: f(40), Height: f(40)},
		},
		Edges: []scene.EdgeRecord{{ID: "e1", Source: "n1", Target: "n2"}},
	}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(pipeline.NewRunner(nil, nil, nil), store.NewMemoryStore(), nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestGeometryEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	snap := pipeline.Snapshot{
		Document: testDocument(),
		Chrome:   scene.ChromeMap{"s1": {Padding: 10, HeaderHeight: 20}},
		Touched:  []string{"s1"},
	}
	resp := postJSON(t, ts.URL+"/v1/geometry", snap)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	geo := decode[pipeline.Geometry](t, resp)

	if geo.Nodes["n1"].Position != (scene.Point{X: 25, Y: 45}) {
		t.Errorf("n1 position = %v", geo.Nodes["n1"].Position)
	}
	if !geo.Edges["e1"].Renderable {
		t.Errorf("e1 not renderable: %s", geo.Edges["e1"].Reason)
	}
}

func TestGeometryRejectsBadDocument(t *testing.T) {
	_, ts := newTestServer(t)

	snap := pipeline.Snapshot{Document: scene.Document{
		Nodes: []scene.NodeRecord{{ID: "a"}, {ID: "a"}},
	}}
	resp := postJSON(t, ts.URL+"/v1/geometry", snap)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDiagramCRUD(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/diagrams", createDiagramRequest{
		Name:     "flow",
		Document: testDocument(),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decode[store.Diagram](t, resp)
	if created.ID == "" || created.Name != "flow" {
		t.Fatalf("created = %+v", created)
	}

	resp, err := http.Get(ts.URL + "/v1/diagrams/" + created.ID)
	if err != nil {
		t.Fatal(err)
	}
	got := decode[store.Diagram](t, resp)
	if len(got.Document.Nodes) != 3 {
		t.Errorf("fetched document has %d nodes", len(got.Document.Nodes))
	}

	resp, err = http.Get(ts.URL + "/v1/diagrams")
	if err != nil {
		t.Fatal(err)
	}
	list := decode[map[string][]string](t, resp)
	if len(list["diagrams"]) != 1 {
		t.Errorf("list = %v", list)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/v1/diagrams/"+created.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/v1/diagrams/" + created.ID)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d", resp.StatusCode)
	}
}

func TestTouchAffectsGeometry(t *testing.T) {
	srv, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/diagrams", createDiagramRequest{
		Name: "layers",
		Document: scene.Document{Nodes: []scene.NodeRecord{
			{ID: "s1", X: 0, Y: 0, Width: f(100), Height: f(100)},
			{ID: "s2", X: 50, Y: 50, Width: f(100), Height: f(100)},
		}},
	})
	created := decode[store.Diagram](t, resp)

	// Untouched: geometry resolves with active-but-empty tracking absent,
	// so stacking falls back to the default tier.
	resp, err := http.Get(ts.URL + "/v1/diagrams/" + created.ID + "/geometry")
	if err != nil {
		t.Fatal(err)
	}
	geo := decode[pipeline.Geometry](t, resp)
	if geo.Nodes["s1"].Z != stacking.DefaultZ {
		t.Errorf("untouched s1 z = %d, want %d", geo.Nodes["s1"].Z, stacking.DefaultZ)
	}

	resp = postJSON(t, ts.URL+"/v1/diagrams/"+created.ID+"/touch", touchRequest{Scene: "s1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("touch status = %d", resp.StatusCode)
	}
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/v1/diagrams/"+created.ID+"/touch", touchRequest{Scene: "s2"})
	touched := decode[map[string][]string](t, resp)
	if ids := touched["touched"]; len(ids) != 2 || ids[0] != "s2" {
		t.Errorf("touched = %v, want [s2 s1]", ids)
	}

	resp, err = http.Get(ts.URL + "/v1/diagrams/" + created.ID + "/geometry")
	if err != nil {
		t.Fatal(err)
	}
	geo = decode[pipeline.Geometry](t, resp)
	if !(geo.Nodes["s2"].Z > geo.Nodes["s1"].Z) {
		t.Errorf("s2 (%d) should stack above s1 (%d)", geo.Nodes["s2"].Z, geo.Nodes["s1"].Z)
	}

	// Deleting the diagram drops its touch state.
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/v1/diagrams/"+created.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	srv.mu.Lock()
	_, still := srv.touched[created.ID]
	srv.mu.Unlock()
	if still {
		t.Error("touch state should be dropped with the diagram")
	}
}

func TestExportDOT(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/diagrams", createDiagramRequest{
		Name:     "flow",
		Document: testDocument(),
	})
	created := decode[store.Diagram](t, resp)

	resp, err := http.Get(ts.URL + "/v1/diagrams/" + created.ID + "/export?format=dot")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "digraph canvas") {
		t.Errorf("export body: %s", buf.String())
	}

	resp, err = http.Get(ts.URL + "/v1/diagrams/" + created.ID + "/export?format=tiff")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad format status = %d", resp.StatusCode)
	}
}
