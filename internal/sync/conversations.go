package sync

import (
	"context"
	"strings"
	"time"

	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/store"
)

// SyncConversations fetches the user's inbox conversations inside the
// lookback window and links each to a local course by matching the remote
// context name against stored course names. Conversations with no matching
// course are kept with a null course link.
func (s *Service) SyncConversations(ctx context.Context) (int, error) {
	names, err := s.store.CourseNames(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().AddDate(0, 0, -s.conversationWindowDays)
	remote := s.adapter.FetchConversations(ctx)

	var conversations []store.Conversation
	for i := range remote {
		rc := &remote[i]
		if err := rc.Validate(); err != nil {
			s.log.Warn().Err(err).Int64("canvas_conversation_id", rc.ID).Msg("dropping malformed conversation")
			continue
		}

		ts := rc.Timestamp()
		if ts != nil && ts.Before(cutoff) {
			continue
		}

		// The list endpoint omits message bodies.
		detail := s.adapter.FetchConversationDetail(ctx, rc.ID)
		if detail != nil {
			rc = detail
			ts = rc.Timestamp()
		}

		conv := store.Conversation{
			CanvasConversationID: rc.ID,
			PostedAt:             ts,
		}
		if rc.Subject != "" {
			subject := rc.Subject
			conv.Title = &subject
		}
		if len(rc.Messages) > 0 {
			body := rc.Messages[0].Body
			conv.Content = &body
			conv.PostedBy = rc.Messages[0].AuthorName
		}
		if rc.ContextName != nil {
			conv.CourseID = matchCourseByName(names, *rc.ContextName)
		}

		conversations = append(conversations, conv)
	}

	return s.store.PersistConversations(ctx, conversations)
}

// matchCourseByName finds the local course whose name appears, case
// insensitively, inside the conversation's context name. Nil when nothing
// matches.
func matchCourseByName(names map[string]int64, contextName string) *int64 {
	lower := strings.ToLower(contextName)
	for name, id := range names {
		if name == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(name)) {
			matched := id
			return &matched
		}
	}
	return nil
}
