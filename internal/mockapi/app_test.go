package mockapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

func newTestApp(t *testing.T, opts Options) *fiber.App {
	t.Helper()
	if opts.TempDir == "" {
		opts.TempDir = t.TempDir()
	}
	app, err := New(opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return app
}

func uploadRequest(t *testing.T, filename string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(body); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/diarize/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
}

func TestDiarizeAcceptsUploadAndCompletes(t *testing.T) {
	app := newTestApp(t, Options{ProcessingDelay: 10 * time.Millisecond, Workers: 1})

	resp, err := app.Test(uploadRequest(t, "sample.wav", make([]byte, 2048)), 2000)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	var submit struct {
		TaskID string `json:"task_id"`
	}
	decodeBody(t, resp, &submit)
	if submit.TaskID == "" {
		t.Fatal("no task_id returned")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/status/"+submit.TaskID, nil), 2000)
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		var status struct {
			Status string `json:"status"`
			Result []struct {
				Speaker string  `json:"speaker"`
				Start   float64 `json:"start"`
				End     float64 `json:"end"`
			} `json:"result"`
		}
		decodeBody(t, resp, &status)
		if status.Status == "completed" {
			if len(status.Result) == 0 {
				t.Fatal("completed with no segments")
			}
			if status.Result[0].Speaker != "SPEAKER_00" || status.Result[0].Start != 0 {
				t.Fatalf("first segment = %+v", status.Result[0])
			}
			return
		}
		if status.Status == "failed" {
			t.Fatal("task failed")
		}
		if time.Now().After(deadline) {
			t.Fatalf("task stuck in %q", status.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDiarizeRejectsUnsupportedFormat(t *testing.T) {
	app := newTestApp(t, Options{})

	resp, err := app.Test(uploadRequest(t, "notes.txt", []byte("hi")), 2000)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStatusUnknownTask(t *testing.T) {
	app := newTestApp(t, Options{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/status/nope", nil), 2000)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSpeakersListsBankBasenames(t *testing.T) {
	bank := t.TempDir()
	for _, name := range []string{"ada.npy", "grace.npy", "readme.txt"} {
		if err := os.WriteFile(filepath.Join(bank, name), []byte{0}, 0644); err != nil {
			t.Fatal(err)
		}
	}
	app := newTestApp(t, Options{BankDir: bank})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/speakers", nil), 2000)
	if err != nil {
		t.Fatalf("speakers: %v", err)
	}
	var body struct {
		Speakers []string `json:"speakers"`
		Total    int      `json:"total"`
	}
	decodeBody(t, resp, &body)
	if body.Total != 2 || len(body.Speakers) != 2 {
		t.Fatalf("speakers = %+v", body)
	}
	for _, s := range body.Speakers {
		if s != "ada" && s != "grace" {
			t.Fatalf("unexpected speaker %q", s)
		}
	}
}

func TestSpeakersMissingBankIsEmpty(t *testing.T) {
	app := newTestApp(t, Options{BankDir: filepath.Join(t.TempDir(), "nope")})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/speakers", nil), 2000)
	if err != nil {
		t.Fatalf("speakers: %v", err)
	}
	var body struct {
		Speakers []string `json:"speakers"`
		Total    int      `json:"total"`
	}
	decodeBody(t, resp, &body)
	if body.Total != 0 || len(body.Speakers) != 0 {
		t.Fatalf("speakers = %+v, want empty bank", body)
	}
}

func TestFakeDiarizeIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upload.wav")
	if err := os.WriteFile(path, make([]byte, 2048), 0644); err != nil {
		t.Fatal(err)
	}

	segs, err := fakeDiarize(path)
	if err != nil {
		t.Fatalf("fakeDiarize: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("segments = %d, want 2 for a 2048 byte upload", len(segs))
	}
	if segs[0].Speaker != "SPEAKER_00" || segs[1].Speaker != "SPEAKER_01" {
		t.Fatalf("speakers = %q, %q", segs[0].Speaker, segs[1].Speaker)
	}
	for i := 1; i < len(segs); i++ {
		if segs[i].Start != segs[i-1].End {
			t.Fatalf("segments not contiguous at %d: %+v", i, segs)
		}
	}
}
