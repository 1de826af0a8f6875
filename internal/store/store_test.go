package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if err := st.InitSchema(context.Background()); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return st
}

func seedCourse(t *testing.T, st *Store, canvasID int64, code, name string) int64 {
	t.Helper()
	ids, err := st.PersistCourses(context.Background(), []CourseRecord{{
		Course: Course{CanvasCourseID: canvasID, CourseCode: code, CourseName: name},
	}})
	if err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return ids[0]
}

func strPtr(s string) *string        { return &s }
func timePtr(tm time.Time) *time.Time { return &tm }

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "test.db")
	st, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()
	if err := st.InitSchema(context.Background()); err != nil {
		t.Fatalf("init schema: %v", err)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	courseID := seedCourse(t, st, 100, "CS570", "Algorithms")

	sentinel := errors.New("unit of work failed")
	err := st.WithTx(ctx, func(tx *sql.Tx) error {
		_, execErr := tx.ExecContext(ctx, `
			INSERT INTO assignments (course_id, canvas_assignment_id, title)
			VALUES (?, ?, ?)`, courseID, 1, "should vanish")
		if execErr != nil {
			return execErr
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want the original error back", err)
	}

	var count int
	if err := st.RawDB().QueryRow("SELECT COUNT(*) FROM assignments").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("rows visible after rollback: %d", count)
	}
}

func TestPersistAnnouncements_BatchAtomicity(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	courseID := seedCourse(t, st, 100, "CS570", "Algorithms")

	batch := []Announcement{
		{CanvasAnnouncementID: 1, Title: "ok one"},
		{CanvasAnnouncementID: 2, Title: "ok two"},
	}
	if _, err := st.PersistAnnouncements(ctx, courseID, batch); err != nil {
		t.Fatalf("persist good batch: %v", err)
	}

	var count int
	if err := st.RawDB().QueryRow("SELECT COUNT(*) FROM announcements").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	// Now a batch against a course id that does not exist: the FK fails
	// and the whole batch rolls back.
	if _, err := st.PersistAnnouncements(ctx, 9999, batch); err == nil {
		t.Fatal("expected foreign key failure")
	}
	if err := st.RawDB().QueryRow("SELECT COUNT(*) FROM announcements").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d after failed batch, want 2", count)
	}
}
