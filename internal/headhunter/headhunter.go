package headhunter

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL      = "https://api.hh.ru"
	mineResumID = "mine"
	userAgent   = "spigell/hh-recommender (spigelly@gmail.com)"
	// Max value for search per page.
	perPage = "100"

	defaultConcurrentPages = 4
	defaultMaxRetries      = 3
	defaultRetryDelay      = time.Second
)

type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	// MaxConcurrentPages bounds parallel page and vacancy detail requests.
	MaxConcurrentPages int
	// MaxRetries is the number of extra attempts for throttled or failed requests.
	MaxRetries int
	RetryDelay time.Duration
}

func New(logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:             logger,
		UserAgent:          userAgent,
		MaxConcurrentPages: defaultConcurrentPages,
		MaxRetries:         defaultMaxRetries,
		RetryDelay:         defaultRetryDelay,
	}
}

func (c *Client) concurrency() int {
	if c.MaxConcurrentPages <= 0 {
		return 1
	}
	return c.MaxConcurrentPages
}
