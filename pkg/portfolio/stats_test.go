package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.NotNil(t, stats.ByCategory)
	assert.Empty(t, stats.ByCategory)
	assert.Equal(t, StatsTotals{}, stats.Totals)
}

func TestComputeStatsOrdering(t *testing.T) {
	projects := []*Project{
		{Category: ProjectCategoryWebDevelopment, Technologies: []string{"Go"}},
		{Category: ProjectCategoryBranding, Technologies: []string{"Go", "Figma", "Sketch"}},
		{Category: ProjectCategoryBranding},
		{Category: ProjectCategoryUIDesign},
	}
	stats := ComputeStats(projects)
	require.Len(t, stats.ByCategory, 3)
	assert.Equal(t, ProjectCategoryBranding, stats.ByCategory[0].Category)
	assert.Equal(t, 1.5, stats.ByCategory[0].AvgTechnologies)
	assert.Equal(t, ProjectCategoryUIDesign, stats.ByCategory[1].Category, "ties are ordered by name")
	assert.Equal(t, ProjectCategoryWebDevelopment, stats.ByCategory[2].Category)
	assert.Equal(t, 3, stats.Totals.UniqueTechnologies)
}
