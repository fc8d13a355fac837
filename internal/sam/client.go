package sam

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alex-li-fetchai/evitsam-agent/internal/segment"
)

const (
	// DefaultBaseURL is the hosted EfficientViT-SAM demo endpoint.
	DefaultBaseURL = "https://evitsam.hanlab.ai"

	// DefaultAPIName is the predict route exposed for automatic mask
	// generation on that endpoint.
	DefaultAPIName = "/lambda_3"
)

// Segmenter is the external model capability: one image plus resolved tuning
// values in, one segmentation result or error out.
type Segmenter interface {
	Segment(ctx context.Context, req *segment.Request, p segment.Params) (*segment.Result, error)
}

// Client calls a gradio-style segmentation endpoint over HTTP.
type Client struct {
	baseURL    string
	apiName    string
	httpClient *http.Client
}

// NewClient creates a backend client. Empty arguments select the hosted
// EfficientViT-SAM endpoint. The HTTP client carries no timeout of its own;
// the Invoker owns the per-request deadline.
func NewClient(baseURL, apiName string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if apiName == "" {
		apiName = DefaultAPIName
	}
	if !strings.HasPrefix(apiName, "/") {
		apiName = "/" + apiName
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiName:    apiName,
		httpClient: &http.Client{},
	}
}

// predictRequest is the gradio run API request body: a positional data array.
type predictRequest struct {
	Data []interface{} `json:"data"`
}

// predictResponse is the gradio run API response body.
type predictResponse struct {
	Data     []json.RawMessage `json:"data"`
	Duration float64           `json:"duration"`
	Error    string            `json:"error,omitempty"`
}

// fileRef is how gradio returns a server-side file instead of inline data.
type fileRef struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type,omitempty"`
}

// Segment sends one predict call to the backend. The image travels inline as
// a base64 data URI followed by the seven tuning knobs in positional order.
//
// Failure classification: transport errors and 502/503/504 statuses mean the
// backend cannot be reached (model_unavailable); any other backend-reported
// failure is an inference_error carrying the backend's diagnostic opaquely.
// Context errors are returned unclassified so the Invoker can distinguish its
// own deadline from a caller cancellation.
func (c *Client) Segment(ctx context.Context, req *segment.Request, p segment.Params) (*segment.Result, error) {
	body := predictRequest{
		Data: []interface{}{
			"data:" + req.MIME + ";base64," + base64.StdEncoding.EncodeToString(req.Raw),
			p.PointsPerSide,
			p.PredIoUThresh,
			p.StabilityScoreThresh,
			p.BoxNMSThresh,
			p.CropNLayers,
			p.CropNPointsDownscaleFactor,
			p.MinMaskRegionArea,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, segment.WrapError(segment.KindInferenceError, err, "marshal predict request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/run"+c.apiName, bytes.NewReader(payload))
	if err != nil {
		return nil, segment.WrapError(segment.KindInferenceError, err, "build predict request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, segment.WrapError(segment.KindModelUnavailable, err, "backend %s unreachable", c.baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet := readSnippet(resp.Body)
		switch resp.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return nil, segment.Errorf(segment.KindModelUnavailable, "backend returned %s", resp.Status)
		default:
			return nil, segment.Errorf(segment.KindInferenceError, "backend returned %s: %s", resp.Status, snippet)
		}
	}

	var pr predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, segment.WrapError(segment.KindInferenceError, err, "decode predict response")
	}
	if pr.Error != "" {
		return nil, segment.Errorf(segment.KindInferenceError, "backend error: %s", pr.Error)
	}
	if len(pr.Data) == 0 {
		return nil, segment.Errorf(segment.KindInferenceError, "backend returned no data")
	}

	overlay, mime, err := c.resolveOutput(ctx, pr.Data[0])
	if err != nil {
		return nil, err
	}

	result := &segment.Result{OverlayBytes: overlay, OverlayMIME: mime}
	if len(pr.Data) > 1 {
		var masks []segment.Mask
		if err := json.Unmarshal(pr.Data[1], &masks); err == nil {
			result.Masks = masks
		}
	}
	return result, nil
}

// resolveOutput turns the first response data item into encoded overlay
// bytes. The item is either an inline base64 data URI or a file reference
// that must be fetched from the backend.
func (c *Client) resolveOutput(ctx context.Context, item json.RawMessage) ([]byte, string, error) {
	var inline string
	if err := json.Unmarshal(item, &inline); err == nil {
		return decodeDataURI(inline)
	}

	var ref fileRef
	if err := json.Unmarshal(item, &ref); err != nil || ref.URL == "" {
		return nil, "", segment.Errorf(segment.KindInferenceError, "unrecognized backend output shape")
	}

	url := ref.URL
	if strings.HasPrefix(url, "/") {
		url = c.baseURL + url
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", segment.WrapError(segment.KindInferenceError, err, "build file fetch")
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", segment.WrapError(segment.KindModelUnavailable, err, "fetch backend output")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", segment.Errorf(segment.KindInferenceError, "fetch backend output: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", segment.WrapError(segment.KindInferenceError, err, "read backend output")
	}
	mime := ref.MimeType
	if mime == "" {
		mime = resp.Header.Get("Content-Type")
	}
	if mime == "" {
		mime = "image/png"
	}
	return data, mime, nil
}

// decodeDataURI splits "data:image/png;base64,...." into bytes and MIME type.
func decodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", segment.Errorf(segment.KindInferenceError, "backend output is not a data URI")
	}
	meta, b64, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", segment.Errorf(segment.KindInferenceError, "malformed data URI from backend")
	}
	mime := strings.TrimSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, "", segment.WrapError(segment.KindInferenceError, err, "decode backend output")
	}
	if mime == "" {
		mime = "image/png"
	}
	return data, mime, nil
}

// readSnippet reads a bounded prefix of an error body for diagnostics.
func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(b))
}

// Ping checks that the backend answers at all. Used once at startup so a
// misconfigured endpoint surfaces before the first request arrives.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return segment.WrapError(segment.KindModelUnavailable, err, "build ping")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return segment.WrapError(segment.KindModelUnavailable, err, "backend %s unreachable", c.baseURL)
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return segment.Errorf(segment.KindModelUnavailable, "backend returned %s", resp.Status)
	}
	return nil
}
