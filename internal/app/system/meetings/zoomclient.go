// internal/app/system/meetings/zoomclient.go
package meetings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

const (
	zoomAPIBase  = "https://api.zoom.us/v2"
	zoomTokenURL = "https://zoom.us/oauth/token"

	// Zoom meeting type 2 is a scheduled meeting.
	zoomScheduledMeeting = 2
)

// ZoomConfig holds the server-to-server OAuth credentials for the Zoom
// account LearnHub schedules under.
type ZoomConfig struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	// APIBase overrides the Zoom endpoint, used by tests.
	APIBase string
}

// ZoomClient implements Provider against the Zoom v2 REST API using
// server-to-server OAuth. Tokens are fetched and refreshed by the
// oauth2 clientcredentials transport.
type ZoomClient struct {
	http    *http.Client
	apiBase string
}

// NewZoomClient builds a Zoom provider client. The returned client is
// safe for concurrent use.
func NewZoomClient(cfg ZoomConfig) *ZoomClient {
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     zoomTokenURL,
		EndpointParams: url.Values{
			"grant_type": {"account_credentials"},
			"account_id": {cfg.AccountID},
		},
	}
	base := cfg.APIBase
	if base == "" {
		base = zoomAPIBase
	}
	return &ZoomClient{
		http:    cc.Client(context.Background()),
		apiBase: base,
	}
}

type zoomMeetingRequest struct {
	Topic     string   `json:"topic"`
	Type      int      `json:"type"`
	StartTime string   `json:"start_time"`
	Duration  int      `json:"duration"`
	Timezone  string   `json:"timezone"`
	Settings  Settings `json:"settings"`
}

type zoomMeetingResponse struct {
	ID       int64  `json:"id"`
	JoinURL  string `json:"join_url"`
	StartURL string `json:"start_url"`
	Password string `json:"password"`
}

type zoomRecordingsResponse struct {
	RecordingFiles []struct {
		ID             string    `json:"id"`
		FileType       string    `json:"file_type"`
		FileSize       int64     `json:"file_size"`
		PlayURL        string    `json:"play_url"`
		RecordingStart time.Time `json:"recording_start"`
	} `json:"recording_files"`
}

// CreateMeeting schedules a meeting under the account's primary user.
func (c *ZoomClient) CreateMeeting(ctx context.Context, req Request) (Meeting, error) {
	body := zoomMeetingRequest{
		Topic:     req.Topic,
		Type:      zoomScheduledMeeting,
		StartTime: req.StartTime.Format("2006-01-02T15:04:05"),
		Duration:  req.DurationMinutes,
		Timezone:  req.Timezone,
		Settings:  req.Settings,
	}

	var resp zoomMeetingResponse
	if err := c.do(ctx, http.MethodPost, "/users/me/meetings", body, &resp); err != nil {
		return Meeting{}, err
	}
	return Meeting{
		ID:       resp.ID,
		JoinURL:  resp.JoinURL,
		HostURL:  resp.StartURL,
		Password: resp.Password,
	}, nil
}

// UpdateMeetingSettings patches the settings of an existing meeting and
// returns the refreshed meeting. Zoom's PATCH returns 204, so the
// meeting is re-fetched afterwards.
func (c *ZoomClient) UpdateMeetingSettings(ctx context.Context, meetingID int64, settings Settings) (Meeting, error) {
	patch := struct {
		Settings Settings `json:"settings"`
	}{Settings: settings}

	path := fmt.Sprintf("/meetings/%d", meetingID)
	if err := c.do(ctx, http.MethodPatch, path, patch, nil); err != nil {
		return Meeting{}, err
	}

	var resp zoomMeetingResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return Meeting{}, err
	}
	return Meeting{
		ID:       resp.ID,
		JoinURL:  resp.JoinURL,
		HostURL:  resp.StartURL,
		Password: resp.Password,
	}, nil
}

// GetRecordings lists the cloud recording artifacts for a meeting.
func (c *ZoomClient) GetRecordings(ctx context.Context, meetingID int64) ([]RecordingFile, error) {
	var resp zoomRecordingsResponse
	path := fmt.Sprintf("/meetings/%d/recordings", meetingID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	files := make([]RecordingFile, 0, len(resp.RecordingFiles))
	for _, f := range resp.RecordingFiles {
		files = append(files, RecordingFile{
			ID:         f.ID,
			FileType:   f.FileType,
			FileSize:   f.FileSize,
			PlayURL:    f.PlayURL,
			RecordedAt: f.RecordingStart,
		})
	}
	return files, nil
}

func (c *ZoomClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("%w: %s %s: %s: %s", ErrProvider, method, path, resp.Status, bytes.TrimSpace(msg))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}
