package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// Endpoints served by FakeWiki, used to count hits and force failures
const (
	EndpointProbe   = "probe"
	EndpointContent = "content"
	EndpointImage   = "image"
	EndpointMedia   = "media"
)

type fakeImage struct {
	data          []byte
	width, height int
	source        *string
}

// FakeWiki is an httptest server speaking the subset of the MediaWiki
// action API that the dictionary client uses.
type FakeWiki struct {
	Server *httptest.Server

	mu        sync.Mutex
	extracts  map[string]string
	images    map[string]fakeImage
	status    map[string]int
	hits      map[string]int
	probeBody string
}

// NewFakeWiki starts a fake server that is closed with the test
func NewFakeWiki(t *testing.T) *FakeWiki {
	t.Helper()

	f := &FakeWiki{
		extracts:  make(map[string]string),
		images:    make(map[string]fakeImage),
		status:    make(map[string]int),
		hits:      make(map[string]int),
		probeBody: "ok",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/probe", f.handleProbe)
	mux.HandleFunc("/w/api.php", f.handleAPI)
	mux.HandleFunc("/media/", f.handleMedia)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the base URL to configure the client with
func (f *FakeWiki) URL() string {
	return f.Server.URL
}

// ProbeURL is the connectivity probe endpoint
func (f *FakeWiki) ProbeURL() string {
	return f.Server.URL + "/probe"
}

// AddWord serves extract as the content of title
func (f *FakeWiki) AddWord(title, extract string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extracts[title] = extract
}

// AddImage serves data as the page image of title
func (f *FakeWiki) AddImage(title string, data []byte, width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images[title] = fakeImage{data: data, width: width, height: height}
}

// AddImageSource serves metadata for title whose source is the given URL
func (f *FakeWiki) AddImageSource(title, source string, width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images[title] = fakeImage{width: width, height: height, source: &source}
}

// SetStatus forces an HTTP status on an endpoint, 0 clears it
func (f *FakeWiki) SetStatus(endpoint string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if code == 0 {
		delete(f.status, endpoint)
		return
	}
	f.status[endpoint] = code
}

// SetProbeBody sets what the probe endpoint answers with
func (f *FakeWiki) SetProbeBody(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeBody = body
}

// Hits returns how many requests reached an endpoint
func (f *FakeWiki) Hits(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[endpoint]
}

// MediaURL is the URL the image payload for title points to
func (f *FakeWiki) MediaURL(title string) string {
	return f.Server.URL + "/media/" + url.PathEscape(title) + ".png"
}

func (f *FakeWiki) record(w http.ResponseWriter, endpoint string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[endpoint]++
	if code, ok := f.status[endpoint]; ok {
		http.Error(w, http.StatusText(code), code)
		return false
	}
	return true
}

func (f *FakeWiki) handleProbe(w http.ResponseWriter, r *http.Request) {
	if !f.record(w, EndpointProbe) {
		return
	}
	f.mu.Lock()
	body := f.probeBody
	f.mu.Unlock()
	fmt.Fprint(w, body)
}

func (f *FakeWiki) handleAPI(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	title := q.Get("titles")

	switch q.Get("prop") {
	case "extracts":
		if !f.record(w, EndpointContent) {
			return
		}
		f.mu.Lock()
		extract, ok := f.extracts[title]
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.Write(MissingPayload(title))
			return
		}
		w.Write(ContentPayload(title, extract))
	case "pageimages":
		if !f.record(w, EndpointImage) {
			return
		}
		f.mu.Lock()
		img, ok := f.images[title]
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.Write(MissingPayload(title))
			return
		}
		source := f.MediaURL(title)
		if img.source != nil {
			source = *img.source
		}
		w.Write(ImagePayload(title, source, img.width, img.height))
	default:
		http.Error(w, "unsupported prop", http.StatusBadRequest)
	}
}

func (f *FakeWiki) handleMedia(w http.ResponseWriter, r *http.Request) {
	if !f.record(w, EndpointMedia) {
		return
	}
	name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/media/"), ".png")
	f.mu.Lock()
	img, ok := f.images[name]
	f.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(img.data)
}
