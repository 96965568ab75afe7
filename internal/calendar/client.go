package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SezimOrozobekova/velox-backend/internal/domain"
)

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

// Client creates events in the user's primary Google calendar. One POST,
// no retries; failures surface to the caller.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type event struct {
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Start       eventTime  `json:"start"`
	End         eventTime  `json:"end"`
	Recurrence  []string   `json:"recurrence,omitempty"`
	Reminders   *reminders `json:"reminders,omitempty"`
}

type reminders struct {
	UseDefault bool `json:"useDefault"`
}

var rruleByFrequency = map[string]string{
	domain.FrequencyDaily:   "RRULE:FREQ=DAILY",
	domain.FrequencyWeekly:  "RRULE:FREQ=WEEKLY",
	domain.FrequencyMonthly: "RRULE:FREQ=MONTHLY",
	domain.FrequencyYearly:  "RRULE:FREQ=YEARLY",
}

func eventFromTask(t *domain.Task) event {
	ev := event{
		Summary:     t.Title,
		Description: t.Notes,
		Location:    t.Location,
		Start:       eventTime{DateTime: t.Date + "T" + t.TimeStart, TimeZone: "UTC"},
		End:         eventTime{DateTime: t.Date + "T" + t.TimeEnd, TimeZone: "UTC"},
	}
	if rule, ok := rruleByFrequency[t.Frequency]; ok {
		ev.Recurrence = []string{rule}
	}
	if t.Reminder {
		ev.Reminders = &reminders{UseDefault: true}
	}
	return ev
}

func (c *Client) CreateEvent(ctx context.Context, accessToken string, t *domain.Task) error {
	body, err := json.Marshal(eventFromTask(t))
	if err != nil {
		return err
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/calendars/primary/events"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("calendar API returned %d: %s", resp.StatusCode, msg)
	}
	return nil
}
