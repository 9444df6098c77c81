package crawler

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podmanager/internal/domain"
)

type triple struct {
	source, target, name string
}

func edgeSet(g *Graph) []triple {
	var out []triple
	for _, l := range g.Links() {
		out = append(out, triple{l.Source.URI(), l.Target.URI(), l.Name})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.source != b.source {
			return a.source < b.source
		}
		if a.target != b.target {
			return a.target < b.target
		}
		return a.name < b.name
	})
	return out
}

// podService is a drawer tree with a shared manager and a cycle back to the drawer
func podService() *fakeService {
	s := newFakeService("/root")
	s.add("/root", "", "drawers", "/drawers/1")
	s.add("/drawers/1", domain.KindDrawer,
		"computeModules", "/drawers/1/cm/1",
		"computeModules", "/drawers/1/cm/2",
		"managedBy", "/managers/1")
	s.add("/drawers/1/cm/1", domain.KindComputeModule,
		"blades", "/drawers/1/cm/1/blades/1",
		"managedBy", "/managers/1")
	s.add("/drawers/1/cm/2", domain.KindComputeModule, "managedBy", "/managers/1")
	s.add("/drawers/1/cm/1/blades/1", domain.KindBlade, "managedBy", "/managers/1")
	s.add("/managers/1", domain.KindManager, "manages", "/drawers/1")
	return s
}

var podEdges = []triple{
	{"/drawers/1", "/drawers/1/cm/1", "computeModules"},
	{"/drawers/1", "/drawers/1/cm/2", "computeModules"},
	{"/drawers/1", "/managers/1", "managedBy"},
	{"/drawers/1/cm/1", "/drawers/1/cm/1/blades/1", "blades"},
	{"/drawers/1/cm/1", "/managers/1", "managedBy"},
	{"/drawers/1/cm/1/blades/1", "/managers/1", "managedBy"},
	{"/drawers/1/cm/2", "/managers/1", "managedBy"},
	{"/managers/1", "/drawers/1", "manages"},
	{"/root", "/drawers/1", "drawers"},
}

func TestBuildCollectsEveryEdge(t *testing.T) {
	s := podService()
	g := New().Build(context.Background(), s)

	assert.Equal(t, podEdges, edgeSet(g))
	assert.Equal(t, "/root", g.Root().URI())

	resources := g.Resources()
	require.Len(t, resources, 6)
	assert.Equal(t, "/root", resources[0].URI(), "root comes first")
}

func TestBuildIndependentOfTraversalOrder(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		s := podService()
		s.shuffle = rand.New(rand.NewSource(seed))
		g := New().Build(context.Background(), s)
		assert.Equal(t, podEdges, edgeSet(g), "seed %d", seed)
	}
}

func TestBuildVisitsEachResourceOnce(t *testing.T) {
	s := podService()
	New().Build(context.Background(), s)

	// The manager is the target of four edges
	for uri := range s.resources {
		assert.Equal(t, 1, s.expansions[uri], uri)
	}
	assert.Equal(t, 1, s.fetches["/root"])
}

func TestBuildSkipsFailingTarget(t *testing.T) {
	s := podService()
	s.broken["/drawers/1/cm/2"] = true

	g := New().Build(context.Background(), s)
	edges := edgeSet(g)

	assert.NotContains(t, edges, triple{"/drawers/1", "/drawers/1/cm/2", "computeModules"})
	assert.NotContains(t, edges, triple{"/drawers/1/cm/2", "/managers/1", "managedBy"})
	assert.Contains(t, edges, triple{"/drawers/1/cm/1/blades/1", "/managers/1", "managedBy"})
	assert.Len(t, edges, len(podEdges)-2)
}

func TestBuildSkipsResourceWithBrokenLinkNames(t *testing.T) {
	s := podService()
	s.resources["/drawers/1/cm/1"].namesFail = true

	g := New().Build(context.Background(), s)
	edges := edgeSet(g)

	assert.Contains(t, edges, triple{"/drawers/1", "/drawers/1/cm/1", "computeModules"})
	assert.NotContains(t, edges, triple{"/drawers/1/cm/1", "/drawers/1/cm/1/blades/1", "blades"})
	assert.True(t, g.Contains("/drawers/1/cm/2", "/managers/1", "managedBy"))
}

func TestBuildRootFailure(t *testing.T) {
	s := podService()
	s.broken["/root"] = true

	g := New().Build(context.Background(), s)
	assert.Equal(t, 0, g.Len())
	assert.Nil(t, g.Root())
	assert.Empty(t, g.Resources())
}

func TestBuildHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := New().Build(ctx, podService())
	assert.Equal(t, 0, g.Len(), "cancelled before the first dequeue")
}

func TestBuildMaxResources(t *testing.T) {
	s := podService()
	g := New(WithMaxResources(2)).Build(context.Background(), s)

	// Root and the drawer are visited; the drawer's targets are linked but not expanded
	assert.True(t, g.Contains("/drawers/1", "/managers/1", "managedBy"))
	assert.False(t, g.Contains("/managers/1", "/drawers/1", "manages"))
	assert.False(t, g.Contains("/drawers/1/cm/1", "/drawers/1/cm/1/blades/1", "blades"))
}

func TestGraphAddDeduplicates(t *testing.T) {
	s := podService()
	drawer := s.resources["/drawers/1"]
	mgr := s.resources["/managers/1"]

	g := NewGraph(nil)
	assert.True(t, g.Add(Link{Source: drawer, Target: mgr, Name: "managedBy"}))
	assert.False(t, g.Add(Link{Source: drawer, Target: mgr, Name: "managedBy"}))
	assert.True(t, g.Add(Link{Source: drawer, Target: mgr, Name: "other"}))
	assert.Equal(t, 2, g.Len())
	assert.Len(t, g.Resources(), 2)
}
