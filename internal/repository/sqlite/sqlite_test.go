package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podmanager/internal/domain"
	"podmanager/internal/repository"
	"podmanager/internal/topology"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory repository with every domain class registered
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
	})

	ctx := context.Background()
	for _, c := range domain.Classes() {
		require.NoError(t, repo.CreateVertexType(ctx, string(c.Kind), c.Schema()))
	}
	return repo
}

// inTx runs fn in a transaction and fails the test on error
func inTx(t *testing.T, repo *Repository, fn func(s repository.Session)) {
	t.Helper()
	err := repo.InTx(context.Background(), func(s repository.Session) error {
		fn(s)
		return nil
	})
	require.NoError(t, err)
}

// ============================================================================
// Session Tests
// ============================================================================

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var id domain.ID
	inTx(t, repo, func(s repository.Session) {
		rack, err := s.Create(ctx, domain.KindRack)
		require.NoError(t, err)
		require.False(t, rack.ID().IsZero())
		domain.Set(rack, domain.PropName, "rack-1")
		domain.Set(rack, domain.PropLocation, topology.NewLocation(topology.Coordinate{Name: "Rack", Value: 1}))
		id = rack.ID()
	})

	err := repo.View(ctx, func(s repository.Session) error {
		rack, err := s.Get(ctx, domain.KindRack, id)
		require.NoError(t, err)
		require.NotNil(t, rack)
		assert.Equal(t, "rack-1", domain.Get(rack, domain.PropName))
		assert.Equal(t, "Rack=1", domain.Get(rack, domain.PropLocation).String())
		assert.False(t, rack.Dirty())

		other, err := s.Get(ctx, domain.KindDrawer, id)
		require.NoError(t, err)
		assert.Nil(t, other, "get with the wrong kind returns nil")

		missing, err := s.Get(ctx, domain.KindRack, id+100)
		require.NoError(t, err)
		assert.Nil(t, missing)

		ok, err := s.Exists(ctx, domain.KindRack, id)
		require.NoError(t, err)
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, err)
}

func TestCreateUnknownType(t *testing.T) {
	repo, err := New(":memory:")
	require.NoError(t, err)
	defer repo.Close()

	err = repo.InTx(context.Background(), func(s repository.Session) error {
		_, err := s.Create(context.Background(), domain.KindBlade)
		return err
	})
	assert.ErrorIs(t, err, repository.ErrUnknownVertexType)
}

func TestIdentityMap(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inTx(t, repo, func(s repository.Session) {
		blade, err := s.Create(ctx, domain.KindBlade)
		require.NoError(t, err)

		again, err := s.Get(ctx, domain.KindBlade, blade.ID())
		require.NoError(t, err)
		assert.Same(t, blade, again)

		all, err := s.GetAll(ctx, domain.KindBlade)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Same(t, blade, all[0])
	})
}

func TestRollbackOnError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := repo.InTx(ctx, func(s repository.Session) error {
		if _, err := s.Create(ctx, domain.KindPod); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = repo.View(ctx, func(s repository.Session) error {
		pods, err := s.GetAll(ctx, domain.KindPod)
		require.NoError(t, err)
		assert.Empty(t, pods)
		return nil
	})
	require.NoError(t, err)
}

func TestGetSingleByProperty(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inTx(t, repo, func(s repository.Session) {
		for _, name := range []string{"a", "b", "b"} {
			r, err := s.Create(ctx, domain.KindRack)
			require.NoError(t, err)
			domain.Set(r, domain.PropName, name)
		}
	})

	err := repo.View(ctx, func(s repository.Session) error {
		got, err := s.GetSingleByProperty(ctx, domain.KindRack, domain.PropName, "a")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "a", domain.Get(got, domain.PropName))

		none, err := s.GetSingleByProperty(ctx, domain.KindRack, domain.PropName, "z")
		require.NoError(t, err)
		assert.Nil(t, none)

		_, err = s.GetSingleByProperty(ctx, domain.KindRack, domain.PropName, "b")
		assert.ErrorIs(t, err, repository.ErrNotSingle)
		return nil
	})
	require.NoError(t, err)
}

func TestGetSingleByPropertySeesUnsavedChanges(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inTx(t, repo, func(s repository.Session) {
		loc, err := topology.ParseLocation("Pod=1,Rack=4")
		require.NoError(t, err)

		rack, err := s.Create(ctx, domain.KindRack)
		require.NoError(t, err)
		domain.Set(rack, domain.PropLocation, loc)

		got, err := s.GetSingleByProperty(ctx, domain.KindRack, domain.PropLocation, loc)
		require.NoError(t, err)
		assert.Same(t, rack, got)
	})
}

func TestGetSingleByIntegerProperty(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inTx(t, repo, func(s repository.Session) {
		addr, err := s.Create(ctx, domain.KindRemoteTargetIscsiAddress)
		require.NoError(t, err)
		domain.Set(addr, domain.PropTargetLUN, 3)
	})

	err := repo.View(ctx, func(s repository.Session) error {
		got, err := s.GetSingleByProperty(ctx, domain.KindRemoteTargetIscsiAddress, domain.PropTargetLUN, 3)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(3), domain.Get(got, domain.PropTargetLUN))
		return nil
	})
	require.NoError(t, err)
}

func TestEdges(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var bladeID domain.ID
	inTx(t, repo, func(s repository.Session) {
		blade, err := s.Create(ctx, domain.KindBlade)
		require.NoError(t, err)
		cpu0, err := s.Create(ctx, domain.KindProcessor)
		require.NoError(t, err)
		cpu1, err := s.Create(ctx, domain.KindProcessor)
		require.NoError(t, err)
		mgr, err := s.Create(ctx, domain.KindManager)
		require.NoError(t, err)

		require.NoError(t, blade.Link(ctx, domain.Contains, cpu1))
		require.NoError(t, blade.Link(ctx, domain.Contains, cpu0))
		require.NoError(t, blade.Link(ctx, domain.Contains, cpu0))
		require.NoError(t, blade.Link(ctx, domain.ManagedBy, mgr))
		bladeID = blade.ID()
	})

	err := repo.View(ctx, func(s repository.Session) error {
		blade, err := s.Get(ctx, domain.KindBlade, bladeID)
		require.NoError(t, err)

		children, err := blade.Linked(ctx, domain.Contains)
		require.NoError(t, err)
		require.Len(t, children, 2)
		assert.Greater(t, children[0].ID(), children[1].ID(), "edges come back in link order")

		managers, err := blade.Linked(ctx, domain.ManagedBy)
		require.NoError(t, err)
		require.Len(t, managers, 1)

		parents, err := children[0].Parents(ctx, domain.Contains)
		require.NoError(t, err)
		require.Len(t, parents, 1)
		assert.Same(t, blade, parents[0])

		require.NoError(t, blade.Unlink(ctx, domain.Contains, children[0]))
		return nil
	})
	require.NoError(t, err)
}

func TestStoredValuesRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var id domain.ID
	inTx(t, repo, func(s repository.Session) {
		nic, err := s.Create(ctx, domain.KindNetworkInterface)
		require.NoError(t, err)
		domain.Set(nic, domain.PropNameServers, []string{"10.0.0.1", "10.0.0.2"})
		domain.Set(nic, domain.PropSpeedMbps, 10000)
		domain.Set(nic, domain.PropFullDuplex, true)
		id = nic.ID()
	})

	err := repo.View(ctx, func(s repository.Session) error {
		nic, err := s.Get(ctx, domain.KindNetworkInterface, id)
		require.NoError(t, err)
		assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, domain.Get(nic, domain.PropNameServers))
		assert.Equal(t, int64(10000), domain.Get(nic, domain.PropSpeedMbps))
		assert.True(t, domain.Get(nic, domain.PropFullDuplex))
		return nil
	})
	require.NoError(t, err)
}

// ============================================================================
// Helper Function Tests
// ============================================================================

func TestJSONPath(t *testing.T) {
	assert.Equal(t, `$."Name"`, jsonPath("Name"))
	assert.Equal(t, `$."a\"b"`, jsonPath(`a"b`))
}

func TestMarshalProperties(t *testing.T) {
	data, err := marshalProperties(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", data)

	props, err := unmarshalProperties(`{"TotalCores": 12}`)
	require.NoError(t, err)
	assert.Equal(t, "12", props["TotalCores"].(interface{ String() string }).String())

	empty, err := unmarshalProperties("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetSingleByEnumProperty(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inTx(t, repo, func(s repository.Session) {
		svc, err := s.Create(ctx, domain.KindExternalService)
		require.NoError(t, err)
		domain.Set(svc, domain.PropServiceType, domain.ServiceTypeRSS)
	})

	err := repo.View(ctx, func(s repository.Session) error {
		got, err := s.GetSingleByProperty(ctx, domain.KindExternalService, domain.PropServiceType, domain.ServiceTypeRSS)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, domain.ServiceTypeRSS, domain.Get(got, domain.PropServiceType))

		none, err := s.GetSingleByProperty(ctx, domain.KindExternalService, domain.PropServiceType, domain.ServiceTypePSME)
		require.NoError(t, err)
		assert.Nil(t, none)
		return nil
	})
	require.NoError(t, err)
}
