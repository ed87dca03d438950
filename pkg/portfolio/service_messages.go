package portfolio

import (
	"context"
	"strings"
)

func (s *service) CreateMessage(ctx context.Context, req CreateMessageRequest) (*Message, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if err := Validate(req); err != nil {
		return nil, err
	}

	msg := &Message{
		ID:        s.newID(),
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "message received", "id", msg.ID)
	return msg, nil
}

func (s *service) GetMessage(ctx context.Context, id string) (*Message, error) {
	return s.repo.GetMessage(ctx, id)
}

func (s *service) ListMessages(ctx context.Context, filter MessageFilter) ([]*Message, error) {
	return s.repo.ListMessages(ctx, filter)
}

func (s *service) MarkMessageRead(ctx context.Context, id string) (*Message, error) {
	msg, err := s.repo.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.Read {
		return msg, nil
	}
	msg.Read = true
	if err := s.repo.UpdateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *service) DeleteMessage(ctx context.Context, id string) error {
	return s.repo.DeleteMessage(ctx, id)
}
