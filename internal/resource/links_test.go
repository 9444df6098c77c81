package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"podmanager/internal/domain"
)

func TestDeclaresLink(t *testing.T) {
	tests := []struct {
		kind     domain.Kind
		name     string
		expected bool
	}{
		{domain.KindComputeModule, "blades", true},
		{domain.KindBlade, "managedBy", true},
		{domain.KindBlade, "containedBy", false},
		{domain.KindManager, "simpleNetwork", true},
		{domain.KindProcessor, "managedBy", false},
		{domain.Kind(""), "blades", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeclaresLink(tt.kind, tt.name))
		})
	}
}

func TestLinkGroupsReturnsCopy(t *testing.T) {
	groups := LinkGroups(domain.KindDrawer)
	groups[0] = "changed"
	assert.True(t, DeclaresLink(domain.KindDrawer, "computeModules"))
	assert.Empty(t, LinkGroups(domain.KindProcessor))
}
