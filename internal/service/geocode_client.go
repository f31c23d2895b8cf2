package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrNoGeocodeMatch 地址无法解析
var ErrNoGeocodeMatch = errors.New("no geocoding match")

// geocodeResult Nominatim 兼容接口的单条结果（lat/lon 是字符串）
type geocodeResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// GeocodeClient Nominatim 兼容的地理编码客户端
// 公共 Nominatim 或 LocationIQ 等兼容服务都可以用 base_url 切换
type GeocodeClient struct {
	httpClient *resty.Client
	apiKey     string
	logger     *zap.Logger
}

// NewGeocodeClient 创建地理编码客户端
// email 按 Nominatim 使用政策附在请求上，apiKey 留空时不附带
func NewGeocodeClient(baseURL, apiKey, email string, logger *zap.Logger) *GeocodeClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "summitly-data/1.0")

	if email != "" {
		client.SetQueryParam("email", email)
	}

	return &GeocodeClient{
		httpClient: client,
		apiKey:     apiKey,
		logger:     logger,
	}
}

var _ Geocoder = (*GeocodeClient)(nil)

// Geocode 解析地址，返回第一条匹配的经纬度
func (c *GeocodeClient) Geocode(ctx context.Context, query string) (float64, float64, error) {
	if query == "" {
		return 0, 0, fmt.Errorf("query is required")
	}

	var results []geocodeResult
	req := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		SetQueryParam("format", "json").
		SetQueryParam("limit", "1").
		SetResult(&results)
	if c.apiKey != "" {
		req.SetQueryParam("key", c.apiKey)
	}

	resp, err := req.Get("/search")
	if err != nil {
		c.logger.Error("Geocode API call failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return 0, 0, fmt.Errorf("failed to call geocode API: %w", err)
	}

	if resp.StatusCode() != 200 {
		c.logger.Error("Geocode API returned error",
			zap.String("query", query),
			zap.Int("status_code", resp.StatusCode()),
		)
		return 0, 0, fmt.Errorf("geocode API error: status %d", resp.StatusCode())
	}

	if len(results) == 0 {
		return 0, 0, ErrNoGeocodeMatch
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q: %w", results[0].Lon, err)
	}

	c.logger.Info("Address geocoded",
		zap.String("query", query),
		zap.Float64("latitude", lat),
		zap.Float64("longitude", lng),
	)

	return lat, lng, nil
}
