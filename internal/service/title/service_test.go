package title_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mingxw/aerochat/backend/internal/service/title"
)

func fallbackService(t *testing.T) *title.Service {
	t.Helper()

	svc, err := title.NewService(context.Background(), nil, zap.NewNop())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestForMessageShortPassthrough(t *testing.T) {
	svc := fallbackService(t)

	got := svc.ForMessage(context.Background(), "Book a flight to Denver")
	if got != "Book a flight to Denver" {
		t.Fatalf("short message should pass through, got %q", got)
	}
}

func TestForMessageCollapsesWhitespace(t *testing.T) {
	svc := fallbackService(t)

	got := svc.ForMessage(context.Background(), "  find\tme a\n\nflight   to  SEA ")
	if got != "find me a flight to SEA" {
		t.Fatalf("whitespace not collapsed: %q", got)
	}
}

func TestForMessageTruncatesLongMessage(t *testing.T) {
	svc := fallbackService(t)

	long := strings.Repeat("flights ", 30)
	got := svc.ForMessage(context.Background(), long)

	if utf8.RuneCountInString(got) > 80 {
		t.Fatalf("title too long (%d runes): %q", utf8.RuneCountInString(got), got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("truncated title should end with ellipsis: %q", got)
	}
}

func TestForMessageEmptyInput(t *testing.T) {
	svc := fallbackService(t)

	if got := svc.ForMessage(context.Background(), "   \n\t "); got != "New conversation" {
		t.Fatalf("expected default title, got %q", got)
	}
}

func TestForMessageNilService(t *testing.T) {
	var svc *title.Service

	if got := svc.ForMessage(context.Background(), "hello there"); got != "hello there" {
		t.Fatalf("nil service should still fall back, got %q", got)
	}
}
