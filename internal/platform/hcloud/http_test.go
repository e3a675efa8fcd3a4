package hcloud

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/hetznercloud/hcloud-go/v2/hcloud/schema"

	"github.com/imamik/cloudweave/internal/config"
)

// testServer creates an httptest server that can be used to mock Hetzner Cloud API responses.
type testServer struct {
	server *httptest.Server
	mux    *http.ServeMux
}

// newTestServer creates a new test server for mocking the Hetzner Cloud API.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	ts := &testServer{server: server, mux: mux}
	ts.handleActions()
	return ts
}

// client returns an hcloud.Client configured to use the test server.
func (ts *testServer) client() *hcloud.Client {
	return hcloud.NewClient(
		hcloud.WithToken("test-token"),
		hcloud.WithEndpoint(ts.server.URL),
		hcloud.WithPollOpts(hcloud.PollOpts{BackoffFunc: hcloud.ConstantBackoff(time.Millisecond)}),
	)
}

// realClient returns a RealClient configured to use the test server.
func (ts *testServer) realClient() *RealClient {
	return NewRealClient("test-token",
		WithHCloudClient(ts.client()),
		WithTimeouts(&config.Timeouts{
			ServerCreate:      30 * time.Second,
			ServerIP:          5 * time.Second,
			Delete:            30 * time.Second,
			PowerAction:       30 * time.Second,
			RetryMaxAttempts:  2,
			RetryInitialDelay: time.Millisecond,
		}),
	)
}

// handleFunc registers a handler for a specific pattern.
func (ts *testServer) handleFunc(pattern string, handler http.HandlerFunc) {
	ts.mux.HandleFunc(pattern, handler)
}

// handleActions reports every polled action as finished.
func (ts *testServer) handleActions() {
	ts.handleFunc("GET /actions", func(w http.ResponseWriter, r *http.Request) {
		var actions []schema.Action
		for _, id := range r.URL.Query()["id"] {
			n, _ := strconv.ParseInt(id, 10, 64)
			actions = append(actions, schema.Action{ID: n, Status: "success", Progress: 100})
		}
		jsonResponse(w, http.StatusOK, schema.ActionListResponse{Actions: actions})
	})
	ts.handleFunc("GET /actions/{id}", func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		jsonResponse(w, http.StatusOK, schema.ActionGetResponse{
			Action: schema.Action{ID: n, Status: "success", Progress: 100},
		})
	})
}

// jsonResponse writes a JSON response with the given status code and body.
func jsonResponse(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func errorResponse(w http.ResponseWriter, statusCode int, code hcloud.ErrorCode, message string) {
	jsonResponse(w, statusCode, schema.ErrorResponse{Error: schema.Error{Code: string(code), Message: message}})
}

// fakeProject is a minimal in-memory Hetzner project served over HTTP.
type fakeProject struct {
	mu      sync.Mutex
	nextID  int64
	servers map[int64]*schema.Server
	created []schema.ServerCreateRequest
	sshKeys []schema.SSHKey
	// failNames makes server creation fail for these names.
	failNames map[string]hcloud.ErrorCode
	// noIPv4Polls is the number of GET /servers/{id} calls answered without an IPv4.
	noIPv4Polls int
	powered     []string
}

func newFakeProject(ts *testServer) *fakeProject {
	p := &fakeProject{nextID: 100, servers: map[int64]*schema.Server{}, failNames: map[string]hcloud.ErrorCode{}}

	ts.handleFunc("GET /server_types", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		jsonResponse(w, http.StatusOK, schema.ServerTypeListResponse{
			ServerTypes: []schema.ServerType{{ID: 1, Name: name, Architecture: "x86"}},
		})
	})
	ts.handleFunc("GET /images", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		jsonResponse(w, http.StatusOK, schema.ImageListResponse{
			Images: []schema.Image{{ID: 10, Name: &name, Type: "system", Architecture: "x86", Status: "available"}},
		})
	})
	ts.handleFunc("GET /locations", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, schema.LocationListResponse{
			Locations: []schema.Location{{ID: 1, Name: r.URL.Query().Get("name")}},
		})
	})
	ts.handleFunc("GET /ssh_keys", p.listSSHKeys)
	ts.handleFunc("POST /ssh_keys", p.createSSHKey)
	ts.handleFunc("POST /servers", p.createServer)
	ts.handleFunc("GET /servers", p.listServers)
	ts.handleFunc("GET /servers/{id}", p.getServer)
	ts.handleFunc("DELETE /servers/{id}", p.deleteServer)
	ts.handleFunc("POST /servers/{id}/actions/{action}", p.powerAction)
	return p
}

func (p *fakeProject) createServer(w http.ResponseWriter, r *http.Request) {
	var req schema.ServerCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, hcloud.ErrorCodeInvalidInput, err.Error())
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, req)
	if code, ok := p.failNames[req.Name]; ok {
		errorResponse(w, http.StatusUnprocessableEntity, code, "cannot create "+req.Name)
		return
	}

	p.nextID++
	labels := map[string]string{}
	if req.Labels != nil {
		labels = *req.Labels
	}
	server := &schema.Server{
		ID:      p.nextID,
		Name:    req.Name,
		Status:  "running",
		Created: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Labels:  labels,
		PublicNet: schema.ServerPublicNet{
			IPv4: schema.ServerPublicNetIPv4{IP: fmt.Sprintf("203.0.113.%d", p.nextID%250)},
		},
	}
	p.servers[server.ID] = server

	resp := schema.ServerCreateResponse{
		Server:      *server,
		Action:      schema.Action{ID: p.nextID * 10, Status: "running"},
		NextActions: []schema.Action{{ID: p.nextID*10 + 1, Status: "running"}},
	}
	if len(req.SSHKeys) == 0 {
		pw := "api-root-" + req.Name
		resp.RootPassword = &pw
	}
	if p.noIPv4Polls > 0 {
		resp.Server.PublicNet.IPv4.IP = ""
	}
	jsonResponse(w, http.StatusCreated, resp)
}

func (p *fakeProject) listServers(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	name := r.URL.Query().Get("name")
	selector := r.URL.Query().Get("label_selector")
	var out []schema.Server
	for _, s := range p.servers {
		if name != "" && s.Name != name {
			continue
		}
		if !matchesSelector(s.Labels, selector) {
			continue
		}
		out = append(out, *s)
	}
	jsonResponse(w, http.StatusOK, schema.ServerListResponse{Servers: out})
}

func matchesSelector(labels map[string]string, selector string) bool {
	if selector == "" {
		return true
	}
	for _, part := range strings.Split(selector, ",") {
		k, v, _ := strings.Cut(part, "=")
		if labels[k] != v {
			return false
		}
	}
	return true
}

func (p *fakeProject) server(w http.ResponseWriter, r *http.Request) *schema.Server {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	s, ok := p.servers[id]
	if !ok {
		errorResponse(w, http.StatusNotFound, hcloud.ErrorCodeNotFound, "server not found")
		return nil
	}
	return s
}

func (p *fakeProject) getServer(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.server(w, r)
	if s == nil {
		return
	}
	out := *s
	if p.noIPv4Polls > 0 {
		p.noIPv4Polls--
		out.PublicNet.IPv4.IP = ""
	}
	jsonResponse(w, http.StatusOK, schema.ServerGetResponse{Server: out})
}

func (p *fakeProject) deleteServer(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.server(w, r)
	if s == nil {
		return
	}
	delete(p.servers, s.ID)
	jsonResponse(w, http.StatusOK, schema.ServerDeleteResponse{Action: schema.Action{ID: 9000 + s.ID, Status: "running"}})
}

func (p *fakeProject) powerAction(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.server(w, r)
	if s == nil {
		return
	}
	action := r.PathValue("action")
	p.powered = append(p.powered, action+":"+s.Name)
	if action == "poweroff" {
		s.Status = "off"
	} else {
		s.Status = "running"
	}
	jsonResponse(w, http.StatusCreated, schema.ActionGetResponse{Action: schema.Action{ID: 8000 + s.ID, Status: "running"}})
}

func (p *fakeProject) listSSHKeys(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fingerprint := r.URL.Query().Get("fingerprint")
	name := r.URL.Query().Get("name")
	var out []schema.SSHKey
	for _, k := range p.sshKeys {
		if (fingerprint != "" && k.Fingerprint == fingerprint) || (name != "" && k.Name == name) {
			out = append(out, k)
		}
	}
	jsonResponse(w, http.StatusOK, schema.SSHKeyListResponse{SSHKeys: out})
}

func (p *fakeProject) createSSHKey(w http.ResponseWriter, r *http.Request) {
	var req schema.SSHKeyCreateRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	p.mu.Lock()
	defer p.mu.Unlock()
	key := schema.SSHKey{ID: int64(500 + len(p.sshKeys)), Name: req.Name, PublicKey: req.PublicKey, Fingerprint: "created"}
	p.sshKeys = append(p.sshKeys, key)
	jsonResponse(w, http.StatusCreated, schema.SSHKeyCreateResponse{SSHKey: key})
}

func (p *fakeProject) createRequests() []schema.ServerCreateRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]schema.ServerCreateRequest(nil), p.created...)
}
