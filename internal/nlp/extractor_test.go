package nlp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SezimOrozobekova/velox-backend/internal/domain"
)

type fakeCompleter struct {
	resp   string
	err    error
	called int
	prompt string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.called++
	f.prompt = prompt
	return f.resp, f.err
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
}

func testCategories() []domain.Category {
	cats := make([]domain.Category, 0, len(domain.DefaultCategories))
	for _, name := range domain.DefaultCategories {
		cats = append(cats, domain.Category{ID: primitive.NewObjectID(), Name: name})
	}
	return cats
}

func newTestExtractor(resp string) (*Extractor, *fakeCompleter) {
	fc := &fakeCompleter{resp: resp}
	e := NewExtractor(fc)
	e.Now = fixedClock
	return e, fc
}

func findCategory(cats []domain.Category, name string) string {
	for _, c := range cats {
		if c.Name == name {
			return c.ID.Hex()
		}
	}
	return ""
}

func TestExtractEmptyTextSkipsTheModel(t *testing.T) {
	e, fc := newTestExtractor(`{}`)
	_, err := e.Extract(context.Background(), "   ", testCategories())
	if !errors.Is(err, ErrEmptyText) {
		t.Fatalf("err = %v, want ErrEmptyText", err)
	}
	if fc.called != 0 {
		t.Fatal("completion API was called for empty input")
	}
}

func TestExtractFillsBlankDateAndTimes(t *testing.T) {
	e, _ := newTestExtractor(`{"title":"Call mom","category":"personal","date":"","time_start":"","time_end":""}`)
	d, err := e.Extract(context.Background(), "call mom", testCategories())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if d.Date != "2025-03-10" {
		t.Fatalf("date = %q", d.Date)
	}
	if d.TimeStart != "13:00:00" || d.TimeEnd != "14:00:00" {
		t.Fatalf("times = %q / %q", d.TimeStart, d.TimeEnd)
	}
}

func TestExtractKeepsExplicitDateAndTimes(t *testing.T) {
	e, _ := newTestExtractor(`{"title":"Dentist","category":"health","date":"2025-04-01","time_start":"09:00:00","time_end":"09:45:00"}`)
	cats := testCategories()
	d, err := e.Extract(context.Background(), "dentist next month", cats)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if d.Date != "2025-04-01" || d.TimeStart != "09:00:00" || d.TimeEnd != "09:45:00" {
		t.Fatalf("draft = %+v", d)
	}
	if d.Category != findCategory(cats, "Health") {
		t.Fatalf("category = %q, want the Health id", d.Category)
	}
}

func TestExtractCategoryFallsBackToOther(t *testing.T) {
	e, _ := newTestExtractor(`{"title":"x","category":"Gardening"}`)
	cats := testCategories()
	d, err := e.Extract(context.Background(), "prune the roses", cats)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if d.Category != findCategory(cats, "Other") {
		t.Fatalf("unknown category must resolve to Other, got %q", d.Category)
	}
}

func TestExtractNoFallbackCategory(t *testing.T) {
	e, _ := newTestExtractor(`{"title":"x","category":"Gardening"}`)
	// the caller deleted their "Other" bucket
	cats := []domain.Category{{ID: primitive.NewObjectID(), Name: "Work"}}
	_, err := e.Extract(context.Background(), "prune the roses", cats)
	if !errors.Is(err, ErrNoFallbackCategory) {
		t.Fatalf("err = %v, want ErrNoFallbackCategory", err)
	}
}

func TestExtractCoercesFrequency(t *testing.T) {
	for _, bad := range []string{"once", "every other day", ""} {
		e, _ := newTestExtractor(`{"title":"x","category":"work","frequency":"` + bad + `"}`)
		d, err := e.Extract(context.Background(), "text", testCategories())
		if err != nil {
			t.Fatalf("extract with frequency %q: %v", bad, err)
		}
		if d.Frequency != domain.FrequencyNone {
			t.Fatalf("frequency %q coerced to %q, want none", bad, d.Frequency)
		}
	}
	e, _ := newTestExtractor(`{"title":"x","category":"work","frequency":"Weekly"}`)
	d, _ := e.Extract(context.Background(), "text", testCategories())
	if d.Frequency != domain.FrequencyWeekly {
		t.Fatalf("frequency = %q, want weekly", d.Frequency)
	}
}

func TestExtractStripsCodeFences(t *testing.T) {
	e, _ := newTestExtractor("```json\n{\"title\":\"Fenced\",\"category\":\"work\"}\n```")
	d, err := e.Extract(context.Background(), "text", testCategories())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if d.Title != "Fenced" {
		t.Fatalf("title = %q", d.Title)
	}
}

func TestExtractBadJSONCarriesRawReply(t *testing.T) {
	raw := "Sure, here's the task you asked for!"
	e, _ := newTestExtractor(raw)
	_, err := e.Extract(context.Background(), "text", testCategories())
	var bad *BadJSONError
	if !errors.As(err, &bad) {
		t.Fatalf("err = %v, want BadJSONError", err)
	}
	if bad.Raw != raw {
		t.Fatalf("Raw = %q, want the untouched model reply", bad.Raw)
	}
}

func TestExtractPromptListsOnlyCallerCategories(t *testing.T) {
	e, fc := newTestExtractor(`{"title":"x","category":"chores"}`)
	cats := []domain.Category{
		{ID: primitive.NewObjectID(), Name: "Chores"},
		{ID: primitive.NewObjectID(), Name: "Other"},
	}
	if _, err := e.Extract(context.Background(), "vacuum the flat", cats); err != nil {
		t.Fatalf("extract: %v", err)
	}
	for _, want := range []string{`"chores"`, `"other"`, "vacuum the flat", "2025-03-10"} {
		if !strings.Contains(fc.prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, fc.prompt)
		}
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  ```json\n{\"a\":1}\n```  ", "{\"a\":1}"},
	}
	for _, c := range cases {
		if got := stripFences(c.in); got != c.want {
			t.Fatalf("stripFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
