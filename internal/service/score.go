package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// ScoreClient fetches a company credit score from the external scoring
// service. Requests are signed with md5(appkey + timestamp + secret).
type ScoreClient struct {
	httpClient *http.Client
	baseURL    string
	appKey     string
	secret     string
}

func NewScoreClient(baseURL, appKey, secret string, timeout time.Duration) *ScoreClient {
	return &ScoreClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		appKey:     appKey,
		secret:     secret,
	}
}

type scoreResponse struct {
	Data struct {
		Score *float64 `json:"score"`
	} `json:"data"`
}

// FetchScore returns the raw external score, or nil when the service has no
// score for the company. The caller decides how to degrade on error.
func (c *ScoreClient) FetchScore(ctx context.Context, companyName string) (*float64, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse score url: %w", err)
	}
	q := endpoint.Query()
	q.Set("name", companyName)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build score request: %w", err)
	}

	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	req.Header.Set("Auth-Version", "2.0")
	req.Header.Set("appkey", c.appKey)
	req.Header.Set("timestamp", timestamp)
	req.Header.Set("sign", c.sign(timestamp))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("score request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("score request: unexpected status %d", resp.StatusCode)
	}

	var body scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode score response: %w", err)
	}

	if body.Data.Score == nil {
		log.Debug().Str("company", companyName).Msg("external service returned no score")
	}
	return body.Data.Score, nil
}

func (c *ScoreClient) sign(timestamp string) string {
	sum := md5.Sum([]byte(c.appKey + timestamp + c.secret))
	return hex.EncodeToString(sum[:])
}
