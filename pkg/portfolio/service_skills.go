package portfolio

import (
	"context"
	"errors"
	"strings"
)

func (s *service) CreateSkill(ctx context.Context, req CreateSkillRequest) (*Skill, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Icon = strings.TrimSpace(req.Icon)
	if err := Validate(req); err != nil {
		return nil, err
	}
	if err := s.ensureSkillNameFree(ctx, req.Name, ""); err != nil {
		return nil, err
	}

	now := s.now()
	skill := &Skill{
		ID:          s.newID(),
		Name:        req.Name,
		Icon:        req.Icon,
		Category:    req.Category,
		Proficiency: req.Proficiency,
		Order:       req.Order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateSkill(ctx, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

func (s *service) GetSkill(ctx context.Context, id string) (*Skill, error) {
	return s.repo.GetSkill(ctx, id)
}

func (s *service) ListSkills(ctx context.Context, filter SkillFilter) ([]*Skill, error) {
	switch filter.Category {
	case "", SkillCategoryDesign, SkillCategoryDevelopment, SkillCategoryTools:
	default:
		return nil, Invalid("category", "category must be one of: design development tools")
	}
	return s.repo.ListSkills(ctx, filter)
}

func (s *service) UpdateSkill(ctx context.Context, id string, req UpdateSkillRequest) (*Skill, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	skill, err := s.repo.GetSkill(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != skill.Name {
			if err := s.ensureSkillNameFree(ctx, name, skill.ID); err != nil {
				return nil, err
			}
			skill.Name = name
		}
	}
	if req.Icon != nil {
		skill.Icon = strings.TrimSpace(*req.Icon)
	}
	if req.Category != nil {
		skill.Category = *req.Category
	}
	if req.Proficiency != nil {
		skill.Proficiency = *req.Proficiency
	}
	if req.Order != nil {
		skill.Order = *req.Order
	}
	skill.UpdatedAt = s.now()

	if err := s.repo.UpdateSkill(ctx, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

func (s *service) DeleteSkill(ctx context.Context, id string) error {
	return s.repo.DeleteSkill(ctx, id)
}

func (s *service) ensureSkillNameFree(ctx context.Context, name, ownID string) error {
	existing, err := s.repo.GetSkillByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != ownID {
		return ErrSkillNameTaken
	}
	return nil
}
