package portfolio

import (
	"context"
	"math"
	"sort"
)

func (s *service) ProjectStats(ctx context.Context) (*ProjectStats, error) {
	projects, err := s.repo.ListProjects(ctx, ProjectFilter{})
	if err != nil {
		return nil, err
	}
	return ComputeStats(projects), nil
}

// ComputeStats aggregates projects by category. Categories are ordered by
// count descending, ties by name.
func ComputeStats(projects []*Project) *ProjectStats {
	type acc struct {
		count, featured, technologies, screens int
	}
	byCategory := make(map[ProjectCategory]*acc)
	unique := make(map[string]struct{})
	stats := &ProjectStats{ByCategory: []CategoryStats{}}

	for _, p := range projects {
		a, ok := byCategory[p.Category]
		if !ok {
			a = &acc{}
			byCategory[p.Category] = a
		}
		a.count++
		a.technologies += len(p.Technologies)
		a.screens += len(p.Screens)
		if p.Featured {
			a.featured++
			stats.Totals.TotalFeatured++
		}
		stats.Totals.TotalProjects++
		stats.Totals.TotalScreens += len(p.Screens)
		for _, t := range p.Technologies {
			unique[t] = struct{}{}
		}
	}
	stats.Totals.UniqueTechnologies = len(unique)

	for category, a := range byCategory {
		avg := float64(a.technologies) / float64(a.count)
		stats.ByCategory = append(stats.ByCategory, CategoryStats{
			Category:        category,
			Count:           a.count,
			FeaturedCount:   a.featured,
			AvgTechnologies: math.Round(avg*10) / 10,
			TotalScreens:    a.screens,
		})
	}
	sort.Slice(stats.ByCategory, func(i, j int) bool {
		if stats.ByCategory[i].Count != stats.ByCategory[j].Count {
			return stats.ByCategory[i].Count > stats.ByCategory[j].Count
		}
		return stats.ByCategory[i].Category < stats.ByCategory[j].Category
	})
	return stats
}
