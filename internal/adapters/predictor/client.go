package predictor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/ewilliams-labs/momu/internal/core/domain"
	"github.com/ewilliams-labs/momu/internal/core/ports"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

const (
	defaultBaseURL   = "http://localhost:5000"
	maxResponseBytes = 64 << 10
)

// Client posts captured frames to a classification service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ ports.MoodClassifier = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *Client) Classify(ctx context.Context, image []byte) (domain.MoodResult, error) {
	if len(image) == 0 {
		return domain.MoodResult{}, fmt.Errorf("predictor: empty image: %w", domain.ErrInvalidArgument)
	}

	body, contentType, err := encodeImage(image)
	if err != nil {
		return domain.MoodResult{}, fmt.Errorf("predictor: encode image: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", body)
	if err != nil {
		return domain.MoodResult{}, fmt.Errorf("predictor: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.MoodResult{}, domain.NewError(domain.ErrTransportFailure, "predictor", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.MoodResult{}, domain.NewError(domain.ErrTransportFailure, "predictor", nil).
			WithDetail(fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.MoodResult{}, domain.NewError(domain.ErrTransportFailure, "predictor", err)
	}

	result, err := decodePrediction(raw)
	if err != nil {
		return domain.MoodResult{}, err
	}
	c.logger.Debug("mood classified", zap.String("label", result.Label))
	return result, nil
}

// encodeImage wraps the frame in a multipart form under the "image" field.
func encodeImage(image []byte) (io.Reader, string, error) {
	mt := mimetype.Detect(image)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="capture%s"`, mt.Extension()))
	h.Set("Content-Type", mt.String())
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
