// Package loki pushes auth event lines to Grafana Loki.
package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"

	"login-api/internal/telemetry/domain"
)

const pushPath = "/loki/api/v1/push"

// PushRequest is the Loki push API request body (v1).
type PushRequest struct {
	Streams []Stream `json:"streams"`
}

// Stream is a single stream with labels and log entries.
type Stream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"` // each entry is [timestamp_ns, log_line]
}

// labelSanitize replaces characters that are invalid in Loki label values.
var labelSanitize = regexp.MustCompile(`[^a-zA-Z0-9_\-:]`)

// Client pushes lines to one Loki instance, retrying transient failures.
type Client struct {
	http    *retryablehttp.Client
	pushURL string
	job     string
}

// NewClient returns a Client for baseURL (e.g. http://localhost:3100). job becomes the stream's job label.
func NewClient(baseURL, job string, logger hclog.Logger) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("loki: base URL is empty")
	}
	if job == "" {
		job = "login-api"
	}
	c := retryablehttp.NewClient()
	c.RetryWaitMin = 100 * time.Millisecond
	c.RetryWaitMax = 1500 * time.Millisecond
	c.RetryMax = 4
	c.Logger = nil
	if logger != nil {
		c.Logger = logger
	}
	return &Client{
		http:    c,
		pushURL: strings.TrimSuffix(baseURL, "/") + pushPath,
		job:     job,
	}, nil
}

// PushEventJSON pushes one Kafka message value. Labels and timestamp come from the decoded
// auth event; an undecodable value is pushed raw with the current time.
func (c *Client) PushEventJSON(ctx context.Context, raw []byte) error {
	labels := map[string]string{}
	ts := time.Now().UTC()
	var ev domain.AuthEvent
	if err := json.Unmarshal(raw, &ev); err == nil {
		if ev.Type != "" {
			labels["event_type"] = string(ev.Type)
			labels["outcome"] = "success"
			if !ev.Succeeded() {
				labels["outcome"] = "failure"
			}
		}
		if !ev.OccurredAt.IsZero() {
			ts = ev.OccurredAt
		}
	}
	return c.Push(ctx, ts, string(raw), labels)
}

// Push sends a single line to Loki. Returns an error if every attempt fails or Loki answers non-2xx.
func (c *Client) Push(ctx context.Context, timestamp time.Time, line string, labels map[string]string) error {
	streamLabels := make(map[string]string, len(labels)+1)
	streamLabels["job"] = c.job
	for k, v := range labels {
		if sanitized := labelSanitize.ReplaceAllString(strings.TrimSpace(v), "_"); sanitized != "" {
			streamLabels[k] = sanitized
		}
	}
	payload, err := json.Marshal(PushRequest{
		Streams: []Stream{{
			Stream: streamLabels,
			Values: [][]string{{strconv.FormatInt(timestamp.UnixNano(), 10), line}},
		}},
	})
	if err != nil {
		return err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", c.pushURL,
		retryablehttp.ReaderFunc(func() (io.Reader, error) { return bytes.NewReader(payload), nil }))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("loki: push: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("loki: push returned %s", resp.Status)
	}
	return nil
}
