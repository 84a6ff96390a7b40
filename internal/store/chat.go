package store

import (
	"context"
	"slices"
	"strings"

	"rtrove/internal/featureflags"
	"rtrove/internal/models"
	"rtrove/internal/observability"
)

// AddChat posts a message to a project's chat.
//
// With optimistic_chat on (the default) the message is visible to readers
// while it is being written and is withdrawn if the write fails. With the
// flag off it only becomes visible after the write succeeds.
func (s *Store) AddChat(ctx context.Context, projectID, userID, content string) (*models.Chat, error) {
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("Message content is required")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	u := s.begin()
	if _, err := u.project(projectID); err != nil {
		observability.RecordOperation("add chat", err)
		return nil, err
	}

	chat := models.Chat{
		ID:        s.newID(),
		ProjectID: projectID,
		UserID:    userID,
		Content:   content,
		CreatedAt: models.Timestamp(s.now().UnixMilli()),
	}
	u.setChats(append(u.st.chats, chat))

	optimistic := s.flags.EnabledOr(featureflags.OptimisticChat, userID, true)
	if optimistic {
		s.mu.Lock()
		s.st.chats = u.st.chats
		s.mu.Unlock()
	}

	if err := s.commit(ctx, "add chat", u); err != nil {
		if optimistic {
			s.mu.Lock()
			s.st.chats = slices.DeleteFunc(slices.Clone(s.st.chats), func(c models.Chat) bool {
				return c.ID == chat.ID
			})
			s.mu.Unlock()
			observability.ChatRollbacks.Inc()
		}
		return nil, err
	}

	s.mu.Lock()
	s.st = u.st
	s.mu.Unlock()
	return &chat, nil
}

// DeleteChat removes a chat message.
func (s *Store) DeleteChat(ctx context.Context, chatID string) error {
	return s.mutate(ctx, "delete chat", func(u *unit) error {
		i := indexChat(u.st.chats, chatID)
		if i < 0 {
			return models.NewNotFoundError("Chat not found")
		}
		u.setChats(slices.Delete(u.st.chats, i, i+1))
		return nil
	})
}

// GetProjectChats returns a project's messages in posting order.
func (s *Store) GetProjectChats(projectID string) []models.Chat {
	out := []models.Chat{}
	s.view(func(st *state) {
		for _, c := range st.chats {
			if c.ProjectID == projectID {
				out = append(out, c)
			}
		}
	})
	return out
}
