package foodapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != defaultAPIURL+"/" {
		t.Fatalf("base = %q, want %q", u.String(), defaultAPIURL+"/")
	}

	u, err = parseBaseURL("example.com:1234/api/food?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" {
		t.Fatalf("scheme = %q, want http", u.Scheme)
	}
	if u.Path != "/api/food/" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestParseBaseURL_MissingHostFails(t *testing.T) {
	if _, err := parseBaseURL("http:///api"); err == nil {
		t.Fatalf("parseBaseURL returned nil error, want missing host error")
	}
}

// fakeServer is a minimal stand-in for the inventory API.
type fakeServer struct {
	mu         sync.Mutex
	items      []Item
	requestIDs []string
	userAgent  string
	lastPatch  expiryPatch
	lastAdd    Product
	searchTerm string
}

func (f *fakeServer) router() http.Handler {
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			f.mu.Lock()
			f.requestIDs = append(f.requestIDs, req.Header.Get(requestIDHeader))
			f.userAgent = req.Header.Get("User-Agent")
			f.mu.Unlock()
			next.ServeHTTP(w, req)
		})
	})
	api := r.PathPrefix("/api/food").Subrouter()
	api.HandleFunc("/inventory", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(f.items)
	}).Methods(http.MethodGet)
	api.HandleFunc("/add", func(w http.ResponseWriter, req *http.Request) {
		var p Product
		if err := json.NewDecoder(req.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.lastAdd = p
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Item{ID: "new", Name: p.Name, Brands: p.Brands, Quantity: p.Quantity, Count: 1})
	}).Methods(http.MethodPost)
	api.HandleFunc("/delete/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := mux.Vars(req)["id"]
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, it := range f.items {
			if it.ID == id {
				f.items = append(f.items[:i], f.items[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		http.NotFound(w, req)
	}).Methods(http.MethodDelete)
	api.HandleFunc("/delete", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		f.items = nil
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"message":"deleted"}`))
	}).Methods(http.MethodDelete)
	api.HandleFunc("/update/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := mux.Vars(req)["id"]
		var patch expiryPatch
		if err := json.NewDecoder(req.Body).Decode(&patch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.lastPatch = patch
		for i := range f.items {
			if f.items[i].ID == id {
				f.items[i].ExpiryDate = patch.ExpiryDate
				_ = json.NewEncoder(w).Encode(f.items[i])
				return
			}
		}
		http.NotFound(w, req)
	}).Methods(http.MethodPatch)
	api.HandleFunc("/search", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		f.searchTerm = req.URL.Query().Get("search")
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode([]Product{{Name: "Oat Milk", Brands: "Oatly", Quantity: "1L"}})
	}).Methods(http.MethodGet)
	return r
}

func newTestClient(t *testing.T, f *fakeServer) *Client {
	t.Helper()
	server := httptest.NewServer(f.router())
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL + "/api/food")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func TestClient_InventoryRoundTrip(t *testing.T) {
	t.Parallel()

	f := &fakeServer{items: []Item{
		{ID: "1", Name: "Milk", Brands: "Acme", Quantity: "1L", Count: 2},
		{ID: "2", Name: "Bread", Brands: "Acme", Quantity: "500g", Count: 1, ExpiryDate: "2024-01-01"},
	}}
	c := newTestClient(t, f)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	items, err := c.ListInventory(ctx)
	if err != nil {
		t.Fatalf("ListInventory returned error: %v", err)
	}
	if len(items) != 2 || items[0].ID != "1" || items[1].ExpiryDate != "2024-01-01" {
		t.Fatalf("ListInventory items = %#v, want 2 items", items)
	}

	updated, err := c.UpdateExpiry(ctx, "2", "2024-02-02")
	if err != nil {
		t.Fatalf("UpdateExpiry returned error: %v", err)
	}
	if updated == nil || updated.ExpiryDate != "2024-02-02" {
		t.Fatalf("UpdateExpiry = %#v, want expiry 2024-02-02", updated)
	}
	f.mu.Lock()
	lastPatch := f.lastPatch
	f.mu.Unlock()
	if lastPatch.ExpiryDate != "2024-02-02" {
		t.Fatalf("patch body = %#v, want expiryDate 2024-02-02", lastPatch)
	}

	if err := c.DeleteItem(ctx, "1"); err != nil {
		t.Fatalf("DeleteItem returned error: %v", err)
	}
	if err := c.DeleteItem(ctx, "1"); err == nil || !strings.Contains(err.Error(), "returned status 404") {
		t.Fatalf("DeleteItem twice error = %v, want status 404", err)
	}

	if err := c.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll returned error: %v", err)
	}
	items, err = c.ListInventory(ctx)
	if err != nil {
		t.Fatalf("ListInventory returned error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("ListInventory after DeleteAll = %#v, want empty", items)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !strings.HasPrefix(f.userAgent, "larder/") {
		t.Fatalf("User-Agent = %q, want larder/*", f.userAgent)
	}
	seen := map[string]bool{}
	for _, id := range f.requestIDs {
		if id == "" || seen[id] {
			t.Fatalf("request ids = %v, want unique non-empty", f.requestIDs)
		}
		seen[id] = true
	}
}

func TestClient_AddItemAndSearch(t *testing.T) {
	t.Parallel()

	f := &fakeServer{}
	c := newTestClient(t, f)
	ctx := context.Background()

	created, err := c.AddItem(ctx, Product{Name: "Milk", Brands: "Acme", Quantity: "1L", URL: "https://example.com/milk"})
	if err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if created.ID != "new" || created.Count != 1 {
		t.Fatalf("AddItem = %#v, want id=new count=1", created)
	}
	f.mu.Lock()
	lastAdd := f.lastAdd
	f.mu.Unlock()
	if lastAdd.URL != "https://example.com/milk" || lastAdd.Brands != "Acme" {
		t.Fatalf("posted product = %#v, want url and brands encoded", lastAdd)
	}

	products, err := c.Search(ctx, "  oat milk ")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(products) != 1 || products[0].Brands != "Oatly" {
		t.Fatalf("Search = %#v, want one Oatly product", products)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchTerm != "oat milk" {
		t.Fatalf("search term = %q, want %q", f.searchTerm, "oat milk")
	}
}

func TestClient_ItemIDStaysInOneSegment(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL + "/api/food/")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := c.DeleteItem(context.Background(), "a/b"); err != nil {
		t.Fatalf("DeleteItem returned error: %v", err)
	}
	if gotPath != "/api/food/delete/a%2Fb" {
		t.Fatalf("path = %q, want %q", gotPath, "/api/food/delete/a%2Fb")
	}
}

func TestClient_RequiresItemID(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := c.DeleteItem(context.Background(), " "); err == nil {
		t.Fatalf("DeleteItem returned nil error, want error")
	}
	if _, err := c.UpdateExpiry(context.Background(), "", "2024-01-01"); err == nil {
		t.Fatalf("UpdateExpiry returned nil error, want error")
	}
}

func TestClient_HTTPErrorDecodeErrorAndTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/inventory":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		case "/add":
			http.Error(w, "nope", http.StatusInternalServerError)
		case "/delete":
			time.Sleep(200 * time.Millisecond)
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.ListInventory(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("ListInventory error = %v, want decode response error", err)
	}

	_, err = c.AddItem(context.Background(), Product{Name: "x", Brands: "y", Quantity: "z"})
	if err == nil || !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("AddItem error = %v, want status 500 error", err)
	}

	err = c.DeleteAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "execute request") {
		t.Fatalf("DeleteAll error = %v, want execute request timeout", err)
	}
}

func TestProduct_Trimmed(t *testing.T) {
	p := Product{Name: "  Milk ", Brands: "\tAcme", Quantity: "1L  "}.Trimmed()
	if p.Name != "Milk" || p.Brands != "Acme" || p.Quantity != "1L" {
		t.Fatalf("Trimmed = %#v, want surrounding whitespace removed", p)
	}
}
