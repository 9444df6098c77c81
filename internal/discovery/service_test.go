package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podmanager/internal/domain"
	"podmanager/internal/repository"
)

func TestServiceDiscoverConcurrently(t *testing.T) {
	store := newTestStore(t)
	a := newFixtureServer(t, podFixture("6b2a5a2e-7cbb-4a57-8c9d-2a0e0b7d9c11"))
	b := newFixtureServer(t, podFixture("0e4c1f7a-3d22-4b9e-a1f0-5c6d7e8f9a00"))
	down := newFixtureServer(t, map[string]string{})

	svc := NewService(NewPass(store), HTTPReaders(), 2, nil)
	eps := []Endpoint{
		{URI: a.URL + "/rest/v1", Type: domain.ServiceTypePSME},
		{URI: down.URL + "/rest/v1", Type: domain.ServiceTypePSME},
		{URI: b.URL + "/rest/v1", Type: domain.ServiceTypePSME},
	}
	outcomes := svc.Discover(context.Background(), eps)
	require.Len(t, outcomes, 3)

	for i, o := range outcomes {
		assert.Equal(t, eps[i], o.Endpoint)
	}
	require.NoError(t, outcomes[0].Err)
	assert.ErrorIs(t, outcomes[1].Err, ErrUnreachable)
	require.NoError(t, outcomes[2].Err)

	err := store.View(context.Background(), func(s repository.Session) error {
		assert.Equal(t, 2, count(t, s, domain.KindExternalService))
		assert.Equal(t, 2, count(t, s, domain.KindDrawer))
		assert.Equal(t, 1, count(t, s, domain.KindRack), "both drawers report the same rack")
		return nil
	})
	require.NoError(t, err)
}

func TestServiceRejectsInvalidEndpoint(t *testing.T) {
	svc := NewService(NewPass(newTestStore(t)), HTTPReaders(), 0, nil)
	_, err := svc.DiscoverOne(context.Background(), Endpoint{URI: "ftp://example"})
	assert.Error(t, err)
}

func TestServiceSinglePassPerEndpoint(t *testing.T) {
	svc := NewService(NewPass(newTestStore(t)), HTTPReaders(), 1, nil)
	require.True(t, svc.begin("http://a"))
	assert.False(t, svc.begin("http://a"))
	assert.True(t, svc.begin("http://b"))
	svc.end("http://a")
	assert.True(t, svc.begin("http://a"))
}
