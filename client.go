package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

const apiVersionSuffix = "/api/v1"

type UploadResponse struct {
	SessionID string `json:"session_id"`
	Filename  string `json:"filename"`
}

type ConvertResponse struct {
	DownloadURL string `json:"download_url"`
}

// ProgressFunc is called as upload bytes leave the client.
type ProgressFunc func(sent, total int64)

// Client talks to the remote conversion service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  hclog.Logger
}

// NewClient returns a client for baseURL. The http.Client is used as is;
// requests are not given a timeout of their own.
func NewClient(baseURL string, httpClient *http.Client, logger hclog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger.Named("client"),
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Upload streams the source file as the multipart field "file".
func (c *Client) Upload(ctx context.Context, src SourceFile, progress ProgressFunc) (*UploadResponse, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src.Path, err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(src.Name)))
		h.Set("Content-Type", src.MimeType)
		part, err := mw.CreatePart(h)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		body := &progressReader{r: f, total: src.Size, fn: progress}
		if _, err := io.Copy(part, body); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResponse
	if err := c.do(req, "upload", &out); err != nil {
		return nil, err
	}
	if out.SessionID == "" {
		return nil, fmt.Errorf("upload: response has no session_id")
	}
	if out.Filename == "" {
		out.Filename = src.Name
	}
	return &out, nil
}

// Convert asks the service to convert the uploaded file of req.SessionID.
func (c *Client) Convert(ctx context.Context, creq ConvertRequest) (*ConvertResponse, error) {
	payload, err := json.Marshal(creq)
	if err != nil {
		return nil, fmt.Errorf("encode convert request: %w", err)
	}
	endpoint := c.baseURL + "/convert/" + url.PathEscape(creq.SessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out ConvertResponse
	if err := c.do(req, "convert", &out); err != nil {
		return nil, err
	}
	if out.DownloadURL == "" {
		return nil, fmt.Errorf("convert: response has no download_url")
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, op string, out any) error {
	id := uuid.NewString()
	req.Header.Set("X-Request-ID", id)
	req.Header.Set("Accept", "application/json")
	c.logger.Debug("request", "op", op, "url", req.URL.String(), "request_id", id)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}
	c.logger.Debug("response", "op", op, "status", resp.StatusCode, "request_id", id)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, Status: resp.StatusCode, Detail: errorDetail(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// errorDetail pulls the "detail" field out of an error body. Non-string
// details (validation error lists) are returned as raw JSON.
func errorDetail(body []byte) string {
	var e struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &e); err != nil || len(e.Detail) == 0 || string(e.Detail) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return s
	}
	return string(e.Detail)
}

// ResolveDownloadURL makes a root-relative download URL absolute using the
// API base with its version suffix removed.
func ResolveDownloadURL(baseURL, downloadURL string) string {
	if u, err := url.Parse(downloadURL); err == nil && u.IsAbs() {
		return downloadURL
	}
	root := strings.TrimSuffix(strings.TrimRight(baseURL, "/"), apiVersionSuffix)
	if !strings.HasPrefix(downloadURL, "/") {
		downloadURL = "/" + downloadURL
	}
	return root + downloadURL
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

type progressReader struct {
	r     io.Reader
	sent  int64
	total int64
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.fn != nil {
			p.fn(p.sent, p.total)
		}
	}
	return n, err
}
