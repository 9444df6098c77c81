package crawler

import (
	"context"
	"errors"
	"math/rand"

	"podmanager/internal/domain"
	"podmanager/internal/resource"
)

// fakeService is an in-memory resource graph
type fakeService struct {
	root      string
	resources map[string]*fakeResource
	// broken URIs fail to fetch
	broken map[string]bool
	// fetches counts Get calls per URI
	fetches map[string]int
	// expansions counts LinkNames calls per URI
	expansions map[string]int
	// shuffle randomizes link name order when non-nil
	shuffle *rand.Rand
}

type fakeResource struct {
	svc       *fakeService
	uri       string
	kind      domain.Kind
	links     map[string][]string
	namesFail bool
}

func newFakeService(root string) *fakeService {
	return &fakeService{
		root:       root,
		resources:  make(map[string]*fakeResource),
		broken:     make(map[string]bool),
		fetches:    make(map[string]int),
		expansions: make(map[string]int),
	}
}

// add declares uri with link groups given as name, target, name, target...
func (s *fakeService) add(uri string, kind domain.Kind, pairs ...string) *fakeResource {
	r := &fakeResource{svc: s, uri: uri, kind: kind, links: make(map[string][]string)}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.links[pairs[i]] = append(r.links[pairs[i]], pairs[i+1])
	}
	s.resources[uri] = r
	return r
}

func (s *fakeService) get(uri string) (resource.Resource, error) {
	s.fetches[uri]++
	r, ok := s.resources[uri]
	if !ok || s.broken[uri] {
		return nil, &resource.Error{URI: uri, Err: errors.New("connection refused")}
	}
	return r, nil
}

func (s *fakeService) Root(context.Context) (resource.Resource, error) {
	return s.get(s.root)
}

func (r *fakeResource) URI() string                { return r.uri }
func (r *fakeResource) Kind() domain.Kind          { return r.kind }
func (r *fakeResource) Attributes() map[string]any { return map[string]any{"Name": r.uri} }

func (r *fakeResource) LinkNames() ([]string, error) {
	r.svc.expansions[r.uri]++
	if r.namesFail {
		return nil, errors.New("malformed links")
	}
	names := make([]string, 0, len(r.links))
	for name := range r.links {
		names = append(names, name)
	}
	if r.svc.shuffle != nil {
		r.svc.shuffle.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })
	}
	return names, nil
}

func (r *fakeResource) Links(_ context.Context, name string) ([]resource.Ref, error) {
	var refs []resource.Ref
	for _, uri := range r.links[name] {
		refs = append(refs, fakeRef{svc: r.svc, uri: uri})
	}
	return refs, nil
}

type fakeRef struct {
	svc *fakeService
	uri string
}

func (f fakeRef) URI() string { return f.uri }

func (f fakeRef) Get(context.Context) (resource.Resource, error) {
	return f.svc.get(f.uri)
}
