// Package sync reconciles remote Canvas collections into the local store.
//
// Every entity type moves through the same three stages: fetch from the
// remote adapter, validate and map into local row shapes, persist inside a
// per-course transaction. Failures isolate at the smallest useful scope: a
// fetch failure skips one course, a malformed record is dropped from its
// batch, and a persist failure rolls back one course's batch without
// touching the rest of the run.
package sync

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/canvas"
	"github.com/AdityaPrakash-26/Canvas-MCP-sub001/internal/store"
)

// ErrAdapterUnavailable is returned when the remote API is not configured.
var ErrAdapterUnavailable = errors.New("canvas adapter unavailable")

// TermMostRecent selects only courses in the newest enrollment term.
const TermMostRecent int64 = -1

// Notifier receives progress events during a sync run. The dashboard
// implements it to stream progress to connected clients.
type Notifier interface {
	SyncProgress(entity string, count int)
	SyncComplete(summary *Summary)
}

type noopNotifier struct{}

func (noopNotifier) SyncProgress(string, int) {}
func (noopNotifier) SyncComplete(*Summary)    {}

// Summary reports what one sync run accomplished.
type Summary struct {
	Courses       int      `json:"courses"`
	Assignments   int      `json:"assignments"`
	Modules       int      `json:"modules"`
	Announcements int      `json:"announcements"`
	Conversations int      `json:"conversations"`
	Files         int      `json:"files"`
	Status        string   `json:"status"`
	Errors        []string `json:"errors,omitempty"`
}

// Service drives sync runs against one store and one remote adapter.
type Service struct {
	store    *store.Store
	adapter  *canvas.Adapter
	notifier Notifier
	log      zerolog.Logger

	// conversationWindowDays bounds how far back conversation sync looks.
	conversationWindowDays int
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier streams progress events to n during sync runs.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithConversationWindow overrides the default 21-day conversation lookback.
func WithConversationWindow(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.conversationWindowDays = days
		}
	}
}

// NewService wires a sync service over the given store and adapter.
func NewService(st *store.Store, adapter *canvas.Adapter, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:                  st,
		adapter:                adapter,
		notifier:               noopNotifier{},
		log:                    log.With().Str("component", "sync").Logger(),
		conversationWindowDays: 21,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncAll runs the full pipeline: courses first (the fan-out source), then
// assignments, modules, announcements, and conversations, in that order. A
// failure in one entity type is recorded and the rest still run; the
// summary reports every count gathered along the way.
func (s *Service) SyncAll(ctx context.Context, termID *int64) *Summary {
	summary := &Summary{Status: "complete"}
	fail := func(stage string, err error) {
		s.log.Error().Err(err).Str("stage", stage).Msg("sync stage failed")
		summary.Status = "error"
		summary.Errors = append(summary.Errors, stage+": "+err.Error())
	}

	courseIDs, err := s.SyncCourses(ctx, termID)
	if err != nil {
		fail("courses", err)
		s.notifier.SyncComplete(summary)
		return summary
	}
	summary.Courses = len(courseIDs)
	s.notifier.SyncProgress("courses", summary.Courses)

	if summary.Assignments, err = s.SyncAssignments(ctx, courseIDs); err != nil {
		fail("assignments", err)
	}
	s.notifier.SyncProgress("assignments", summary.Assignments)

	if summary.Modules, err = s.SyncModules(ctx, courseIDs); err != nil {
		fail("modules", err)
	}
	s.notifier.SyncProgress("modules", summary.Modules)

	if summary.Announcements, err = s.SyncAnnouncements(ctx, courseIDs); err != nil {
		fail("announcements", err)
	}
	s.notifier.SyncProgress("announcements", summary.Announcements)

	if summary.Conversations, err = s.SyncConversations(ctx); err != nil {
		fail("conversations", err)
	}
	s.notifier.SyncProgress("conversations", summary.Conversations)

	if summary.Files, err = s.SyncFiles(ctx, courseIDs); err != nil {
		fail("files", err)
	}
	s.notifier.SyncProgress("files", summary.Files)

	s.log.Info().
		Int("courses", summary.Courses).
		Int("assignments", summary.Assignments).
		Int("modules", summary.Modules).
		Int("announcements", summary.Announcements).
		Int("conversations", summary.Conversations).
		Int("files", summary.Files).
		Str("status", summary.Status).
		Msg("sync run finished")
	s.notifier.SyncComplete(summary)
	return summary
}
