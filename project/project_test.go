package project

import (
	"testing"

	"github.com/0xPolygon/cdk-gateway/log"
	"github.com/0xPolygon/cdk-gateway/types"
	"github.com/stretchr/testify/require"
)

func TestSwitch(t *testing.T) {
	s := NewService(log.GetDefaultLogger(), nil)
	require.Nil(t, s.Current())
	require.Empty(t, s.Key())

	var seen []string
	dispose := s.Subject().Subscribe(func(p *types.Project) {
		if p == nil {
			seen = append(seen, "")
			return
		}
		seen = append(seen, p.Key)
	})
	defer dispose()

	project := &types.Project{Key: "k1", Metadata: `{"app":"demo"}`}
	s.Switch(project)
	project.Key = "mutated"
	require.Equal(t, "k1", s.Key())
	require.Equal(t, `{"app":"demo"}`, s.Metadata())

	s.Switch(&types.Project{})
	require.Nil(t, s.Current())
	require.Empty(t, s.Metadata())

	require.Equal(t, []string{"", "k1", ""}, seen)
}

func TestInitialProject(t *testing.T) {
	s := NewService(log.GetDefaultLogger(), &types.Project{Key: "initial"})
	require.Equal(t, &types.Project{Key: "initial"}, s.Current())
}
