// Package face is the boundary to face-attribute detection. Detection itself
// runs elsewhere; this package only moves image bytes out and attributes back.
package face

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/stylist/internal/profile"
)

// ErrEmptyImage is returned when Analyze is called without image data.
var ErrEmptyImage = errors.New("face: empty image")

// Attributes are the detected facial attributes.
type Attributes struct {
	Shape    string `json:"shape"`
	SkinTone string `json:"skin_tone"`
}

// ToProfile combines the detected attributes with the user-supplied gender.
func (a Attributes) ToProfile(gender string) profile.Profile {
	return profile.Profile{Shape: a.Shape, SkinTone: a.SkinTone, Gender: gender}
}

// Analyzer detects facial attributes from raw image bytes.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (Attributes, error)
}

// Unknown is an Analyzer that detects nothing. Every attribute comes back
// empty and is later replaced by the profile defaults.
type Unknown struct{}

// Analyze implements Analyzer.
func (Unknown) Analyze(_ context.Context, image []byte) (Attributes, error) {
	if len(image) == 0 {
		return Attributes{}, ErrEmptyImage
	}
	return Attributes{}, nil
}

// maxResponseBytes bounds how much of the remote service's reply is read.
const maxResponseBytes = 1 << 20

// Remote posts the image to an HTTP detection service and reads
// {"shape": ..., "skin_tone": ...} from the reply.
type Remote struct {
	url    string
	client *http.Client
}

// NewRemote returns a Remote for url. A nil client gets a default one with a
// 30 second timeout.
func NewRemote(url string, client *http.Client) *Remote {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Remote{url: url, client: client}
}

// Analyze implements Analyzer.
func (r *Remote) Analyze(ctx context.Context, image []byte) (Attributes, error) {
	if len(image) == 0 {
		return Attributes{}, ErrEmptyImage
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(image))
	if err != nil {
		return Attributes{}, fmt.Errorf("face: build request: %w", err)
	}
	req.Header.Set("Content-Type", http.DetectContentType(image))
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Attributes{}, fmt.Errorf("face: analyze: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Attributes{}, fmt.Errorf("face: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if gjson.ValidBytes(body) {
			if e := gjson.GetBytes(body, "error"); e.Exists() {
				msg = e.String()
			}
		}
		return Attributes{}, fmt.Errorf("face: analyze: status %d: %s", resp.StatusCode, msg)
	}

	if !gjson.ValidBytes(body) {
		return Attributes{}, fmt.Errorf("face: analyze: response is not JSON")
	}
	res := gjson.ParseBytes(body)
	if e := res.Get("error"); e.Exists() && e.String() != "" {
		return Attributes{}, fmt.Errorf("face: analyze: %s", e.String())
	}
	return Attributes{
		Shape:    res.Get("shape").String(),
		SkinTone: res.Get("skin_tone").String(),
	}, nil
}
