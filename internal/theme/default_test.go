package theme

import (
	"strings"
	"testing"

	"git.lost.host/meutraa/eotw/internal/session"
)

func TestNoteColor(t *testing.T) {
	tests := []struct {
		denom    int
		expected string
	}{
		{1, "236;30;0m"},
		{2, "0;118;236m"},
		{5, "106;106;106m"},
	}
	th := &DefaultTheme{}
	for _, test := range tests {
		s := th.RenderNote(0, test.denom)
		if !strings.Contains(s, test.expected) {
			t.Errorf("RenderNote(0, %v) = %q, expected color %v", test.denom, s, test.expected)
		}
	}
}

func TestNotificationColor(t *testing.T) {
	th := &DefaultTheme{}
	if th.NotificationColor(session.Warning) == th.NotificationColor(session.Info) {
		t.Error("warnings should stand out from info")
	}
}
