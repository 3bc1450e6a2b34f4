package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"leafstream/internal/layout"
	"leafstream/internal/logger"
)

// ErrUnauthorized is matched by StatusError for 401 and 403 responses.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is returned for non-2xx responses from the controller.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && (e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden)
}

// Conf holds everything needed to reach the controller's HTTP API.
type Conf struct {
	Address string        // Address - IP или имя контроллера.
	Token   string        // Token - токен доступа.
	Port    int           // Port - порт API, обычно 16021.
	Timeout time.Duration // Timeout - таймаут одного запроса.
}

// Gateway is the management-plane client of the panel controller.
type Gateway struct {
	log    logger.Logger
	cfg    Conf
	client *http.Client
}

// New returns a Gateway. A zero Timeout means 5s.
func New(log logger.Logger, cfg Conf) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Gateway{
		log:    log,
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (g *Gateway) root() string {
	return "http://" + net.JoinHostPort(g.cfg.Address, strconv.Itoa(g.cfg.Port)) + "/api/v1"
}

func (g *Gateway) do(ctx context.Context, method, path string, body interface{}, authed bool) ([]byte, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s body: %w", path, err)
		}
		r = bytes.NewReader(b)
	}

	url := g.root()
	if authed {
		url += "/" + g.cfg.Token
	}
	url += path

	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	g.log.Module("gateway").Debugf("%s %s", method, path)
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: failed to read body: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}
	return data, nil
}

// FetchLayout reads the current panel layout.
func (g *Gateway) FetchLayout(ctx context.Context) (*layout.Layout, error) {
	data, err := g.do(ctx, http.MethodGet, "/panelLayout/layout", nil, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch layout: %w", err)
	}
	return layout.Load(data)
}

type effectWrite struct {
	Write struct {
		Command           string `json:"command"`
		AnimType          string `json:"animType"`
		ExtControlVersion string `json:"extControlVersion"`
	} `json:"write"`
}

// ArmStreaming switches the controller into external control mode (protocol v2).
func (g *Gateway) ArmStreaming(ctx context.Context) error {
	var body effectWrite
	body.Write.Command = "display"
	body.Write.AnimType = "extControl"
	body.Write.ExtControlVersion = "v2"

	if _, err := g.do(ctx, http.MethodPut, "/effects", body, true); err != nil {
		return fmt.Errorf("failed to arm external control: %w", err)
	}
	g.log.Module("gateway").Info("external control armed")
	return nil
}

// PowerState reports whether the panels are switched on.
func (g *Gateway) PowerState(ctx context.Context) (bool, error) {
	data, err := g.do(ctx, http.MethodGet, "/state/on", nil, true)
	if err != nil {
		return false, fmt.Errorf("failed to read power state: %w", err)
	}
	var v BoolValue
	if err := json.Unmarshal(data, &v); err != nil {
		return false, fmt.Errorf("failed to parse power state: %w", err)
	}
	return v.Value, nil
}

// SetPower switches the panels on or off.
func (g *Gateway) SetPower(ctx context.Context, on bool) error {
	body := map[string]BoolValue{"on": {Value: on}}
	if _, err := g.do(ctx, http.MethodPut, "/state", body, true); err != nil {
		return fmt.Errorf("failed to set power state: %w", err)
	}
	return nil
}

// Info reads the controller description.
func (g *Gateway) Info(ctx context.Context) (*Info, error) {
	data, err := g.do(ctx, http.MethodGet, "/", nil, true)
	if err != nil {
		return nil, fmt.Errorf("failed to read device info: %w", err)
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse device info: %w", err)
	}
	return &info, nil
}

// Pair requests a new access token. The controller only grants it for a short
// time after its power button has been held.
func (g *Gateway) Pair(ctx context.Context) (string, error) {
	data, err := g.do(ctx, http.MethodPost, "/new", nil, false)
	if err != nil {
		return "", fmt.Errorf("failed to pair: %w", err)
	}
	var resp struct {
		AuthToken string `json:"auth_token"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("failed to parse pairing response: %w", err)
	}
	if resp.AuthToken == "" {
		return "", errors.New("failed to pair: empty token")
	}
	return resp.AuthToken, nil
}
