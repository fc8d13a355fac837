package sam

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alex-li-fetchai/evitsam-agent/internal/segment"
)

func TestClient_Segment(t *testing.T) {
	overlayBytes := []byte("fake-png-overlay")
	var gotBody predictRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/run/lambda_3" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		masks, _ := json.Marshal([]segment.Mask{
			{Score: 0.97, Stability: 0.91, Area: 120, BBox: [4]int{1, 2, 10, 8}},
		})
		resp := map[string]interface{}{
			"data": []interface{}{
				"data:image/png;base64," + base64.StdEncoding.EncodeToString(overlayBytes),
				json.RawMessage(masks),
			},
			"duration": 1.2,
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "/lambda_3")
	req := &segment.Request{MIME: "image/png", Raw: []byte("input-image")}
	p := segment.DefaultParams()
	p.PointsPerSide = 32

	res, err := c.Segment(context.Background(), req, p)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if string(res.OverlayBytes) != string(overlayBytes) {
		t.Errorf("overlay bytes mismatch")
	}
	if res.OverlayMIME != "image/png" {
		t.Errorf("overlay MIME = %q", res.OverlayMIME)
	}
	if len(res.Masks) != 1 || res.Masks[0].Area != 120 {
		t.Errorf("masks = %+v", res.Masks)
	}

	if len(gotBody.Data) != 8 {
		t.Fatalf("predict data has %d items, want 8", len(gotBody.Data))
	}
	if gotBody.Data[1] != float64(32) {
		t.Errorf("points_per_side on the wire = %v, want 32", gotBody.Data[1])
	}
	if gotBody.Data[2] != 0.8 {
		t.Errorf("pred_iou_thresh on the wire = %v, want 0.8", gotBody.Data[2])
	}
}

func TestClient_SegmentFileReference(t *testing.T) {
	overlayBytes := []byte("overlay-via-file")
	mux := http.NewServeMux()
	mux.HandleFunc("/run/lambda_3", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []interface{}{
				map[string]string{"url": "/file/out.png", "mime_type": "image/png"},
			},
		})
	})
	mux.HandleFunc("/file/out.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(overlayBytes)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, "lambda_3")
	res, err := c.Segment(context.Background(), &segment.Request{MIME: "image/png", Raw: []byte("in")}, segment.DefaultParams())
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if string(res.OverlayBytes) != string(overlayBytes) {
		t.Error("overlay bytes mismatch for file reference output")
	}
}

func TestClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "loading model", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Segment(context.Background(), &segment.Request{MIME: "image/png", Raw: []byte("in")}, segment.DefaultParams())
	if !segment.IsKind(err, segment.KindModelUnavailable) {
		t.Errorf("wrong kind %q (err: %v)", segment.KindOf(err), err)
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	// Reserve a port then close it so nothing is listening.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, "")
	_, err := c.Segment(context.Background(), &segment.Request{MIME: "image/png", Raw: []byte("in")}, segment.DefaultParams())
	if !segment.IsKind(err, segment.KindModelUnavailable) {
		t.Errorf("wrong kind %q (err: %v)", segment.KindOf(err), err)
	}
}

func TestClient_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "invalid grid size", "data": []interface{}{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Segment(context.Background(), &segment.Request{MIME: "image/png", Raw: []byte("in")}, segment.DefaultParams())
	if !segment.IsKind(err, segment.KindInferenceError) {
		t.Errorf("wrong kind %q (err: %v)", segment.KindOf(err), err)
	}
}

func TestDecodeDataURI(t *testing.T) {
	data, mime, err := decodeDataURI("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("hello")))
	if err != nil {
		t.Fatalf("decodeDataURI failed: %v", err)
	}
	if string(data) != "hello" || mime != "image/jpeg" {
		t.Errorf("got %q %q", data, mime)
	}

	if _, _, err := decodeDataURI("not a data uri"); err == nil {
		t.Error("expected failure for non data URI")
	}
}
