package canvas

import (
	"testing"
	"time"
)

func tp(t time.Time) *time.Time { return &t }
func sp(s string) *string       { return &s }

func TestConversationTimestamp_Priority(t *testing.T) {
	last := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	msg := time.Date(2025, 2, 20, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		conv RemoteConversation
		want *time.Time
	}{
		{"last message wins", RemoteConversation{
			LastMessageAt: tp(last), CreatedAt: tp(created),
			Messages: []RemoteMessage{{Body: "hi", CreatedAt: tp(msg)}},
		}, tp(last)},
		{"created when no last message", RemoteConversation{
			CreatedAt: tp(created),
			Messages:  []RemoteMessage{{Body: "hi", CreatedAt: tp(msg)}},
		}, tp(created)},
		{"first message as last resort", RemoteConversation{
			Messages: []RemoteMessage{{Body: "hi", CreatedAt: tp(msg)}},
		}, tp(msg)},
		{"nothing known", RemoteConversation{}, nil},
		{"message without timestamp", RemoteConversation{
			Messages: []RemoteMessage{{Body: "hi"}},
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.conv.Timestamp()
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("Timestamp() = %v, want nil", got)
			case tt.want != nil && (got == nil || !got.Equal(*tt.want)):
				t.Errorf("Timestamp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRemoteFileName_Fallback(t *testing.T) {
	f := RemoteFile{ID: 1, Filename: "lec01_slides.pdf"}
	if got := f.Name(); got != "lec01_slides.pdf" {
		t.Errorf("Name() = %q", got)
	}

	f.DisplayName = sp("Lecture 1 Slides")
	if got := f.Name(); got != "Lecture 1 Slides" {
		t.Errorf("Name() = %q", got)
	}

	f.DisplayName = sp("")
	if got := f.Name(); got != "lec01_slides.pdf" {
		t.Errorf("Name() with empty display name = %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"course ok", (&RemoteCourse{ID: 1, Name: "Algorithms"}).Validate(), false},
		{"course missing id", (&RemoteCourse{Name: "Algorithms"}).Validate(), true},
		{"course missing name", (&RemoteCourse{ID: 1}).Validate(), true},
		{"assignment ok", (&RemoteAssignment{ID: 1, Name: "HW 1"}).Validate(), false},
		{"assignment missing name", (&RemoteAssignment{ID: 1}).Validate(), true},
		{"module missing name", (&RemoteModule{ID: 1}).Validate(), true},
		{"module item missing title", (&RemoteModuleItem{ID: 1}).Validate(), true},
		{"announcement missing title", (&RemoteAnnouncement{ID: 1}).Validate(), true},
		{"conversation needs only id", (&RemoteConversation{ID: 1}).Validate(), false},
		{"conversation missing id", (&RemoteConversation{}).Validate(), true},
		{"file missing filename", (&RemoteFile{ID: 1}).Validate(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (tt.err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", tt.err, tt.wantErr)
			}
		})
	}
}
