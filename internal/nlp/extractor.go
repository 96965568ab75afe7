package nlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SezimOrozobekova/velox-backend/internal/domain"
)

var (
	// ErrEmptyText rejects empty input before any external call is made.
	ErrEmptyText = errors.New("no text provided")
	// ErrNoFallbackCategory: the model named an unknown category and the
	// caller has no "Other" bucket to fall back to.
	ErrNoFallbackCategory = errors.New("category not recognized and 'Other' category not found")
)

// BadJSONError keeps the raw model output for diagnosis; it is never
// silently substituted.
type BadJSONError struct {
	Raw string
}

func (e *BadJSONError) Error() string { return "invalid JSON from completion API" }

// TaskDraft is the normalized task shape handed back to the caller,
// ready to be submitted to task creation. Category carries the id of one
// of the caller's own categories, never an invented name.
type TaskDraft struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	Date      string `json:"date"`
	TimeStart string `json:"time_start"`
	TimeEnd   string `json:"time_end"`
	Reminder  bool   `json:"reminder"`
	Location  string `json:"location"`
	Notes     string `json:"notes"`
	Frequency string `json:"frequency"`
}

type Extractor struct {
	Completer Completer
	Now       func() time.Time
}

func NewExtractor(c Completer) *Extractor {
	return &Extractor{Completer: c, Now: time.Now}
}

// Extract turns free text into a TaskDraft using only the caller's own
// categories as vocabulary.
func (e *Extractor) Extract(ctx context.Context, text string, categories []domain.Category) (*TaskDraft, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	now := e.Now()
	currentDate := now.Format("2006-01-02")
	defaultStart := now.Add(time.Hour).Format("15:04:05")
	defaultEnd := now.Add(2 * time.Hour).Format("15:04:05")

	mapping := make(map[string]string, len(categories)) // lower(name) -> id hex
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		lower := strings.ToLower(c.Name)
		mapping[lower] = c.ID.Hex()
		names = append(names, lower)
	}

	prompt := buildPrompt(text, names, now, currentDate, defaultStart)

	raw, err := e.Completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		return nil, &BadJSONError{Raw: raw}
	}

	draft := &TaskDraft{
		Title:     getString(parsed, "title"),
		Date:      strings.TrimSpace(getString(parsed, "date")),
		TimeStart: strings.TrimSpace(getString(parsed, "time_start")),
		TimeEnd:   strings.TrimSpace(getString(parsed, "time_end")),
		Reminder:  getBool(parsed, "reminder"),
		Location:  getString(parsed, "location"),
		Notes:     getString(parsed, "notes"),
	}

	// category: closed vocabulary, fallback to the caller's "Other"
	category := strings.ToLower(strings.TrimSpace(getString(parsed, "category")))
	id, known := mapping[category]
	if category == "" || !known {
		other, hasOther := mapping["other"]
		if !hasOther {
			return nil, ErrNoFallbackCategory
		}
		id = other
	}
	draft.Category = id

	// frequency: outside the five allowed values it is coerced, not an error
	freq := strings.ToLower(strings.TrimSpace(getString(parsed, "frequency")))
	if !domain.ValidFrequency(freq) {
		freq = domain.FrequencyNone
	}
	draft.Frequency = freq

	// blank date/times take the defaults computed above; non-blank values
	// pass through without re-validation
	if draft.Date == "" {
		draft.Date = currentDate
	}
	if draft.TimeStart == "" {
		draft.TimeStart = defaultStart
	}
	if draft.TimeEnd == "" {
		draft.TimeEnd = defaultEnd
	}

	return draft, nil
}

func buildPrompt(text string, categoryNames []string, now time.Time, currentDate, defaultStart string) string {
	quoted := make([]string, len(categoryNames))
	for i, n := range categoryNames {
		quoted[i] = fmt.Sprintf("%q", n)
	}

	var b strings.Builder
	b.WriteString("Extract task data in JSON format with fields:\n")
	b.WriteString("title, category, date (YYYY-MM-DD), time_start (HH:MM:SS), time_end (HH:MM:SS), reminder (true/false), location, notes, frequency\n\n")
	b.WriteString("Frequency must be one of: none, daily, weekly, monthly, yearly.\n\n")
	b.WriteString("Text:\n")
	b.WriteString(text)
	b.WriteString("\n\n")
	b.WriteString("Respond with ONLY a valid JSON object without any markdown code blocks or additional text.\n")
	b.WriteString("If frequency cannot be determined confidently, use \"none\".\n\n")
	fmt.Fprintf(&b, "Today's day of week, date and time is %s, %s.\n\n", now.Weekday(), now.Format("2006-01-02 15:04:05"))
	b.WriteString("Rules for the \"title\":\n")
	b.WriteString("- Title must be a short but meaningful summary of the task (1-6 words).\n")
	b.WriteString("- It MUST capture the main action + its target or purpose.\n")
	b.WriteString("- Include important context if it changes the meaning.\n")
	b.WriteString("- Do NOT include unnecessary long descriptions, but keep essential information that defines the task.\n\n")
	b.WriteString("Only use one of the following category names:\n")
	fmt.Fprintf(&b, "[%s]\n\n", strings.Join(quoted, ", "))
	b.WriteString("Do not invent new categories. Use names exactly as listed.\n\n")
	b.WriteString("Rules for the \"notes\":\n")
	b.WriteString("- Include all specific details like names, places, people, or extra context.\n\n")
	b.WriteString("If no time mentioned:\n")
	fmt.Fprintf(&b, "- Set date to current date (%s),\n", currentDate)
	fmt.Fprintf(&b, "- Set time_start to one hour from now (%s),\n", defaultStart)
	b.WriteString("- Set time_end to one hour after time_start.\n\n")
	b.WriteString("Write the title and notes in the same language as the input text.\n")
	return b.String()
}

// stripFences removes a markdown code-fence wrapper, with or without a
// language tag, from the model's reply.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "{}") {
		s = s[i+1:] // drop the language tag line ("json", "")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getBool(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}
