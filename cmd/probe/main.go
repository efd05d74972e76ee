package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"licensegate/pkg/config"
	"licensegate/pkg/envelope"
	"licensegate/pkg/logger"
	"licensegate/pkg/util"
	"licensegate/services/gateway"
)

// probe performs one redemption against a running gateway, the way a client
// would, and prints the decrypted answer.
type ProbeOptions struct {
	BaseURL string
	Owner   string
	Game    string
	Key     string
	Serial  string
	Info    bool
	Retries int
}

func main() {
	if err := newProbeCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newProbeCmd() *cobra.Command {
	opts := &ProbeOptions{
		BaseURL: "http://localhost:8080",
		Game:    "PUBG",
		Serial:  "probe-device-001",
		Retries: 2,
	}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Redeem a license key against a gateway and print the result.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.BaseURL, "url", opts.BaseURL, "gateway base URL")
	cmd.Flags().StringVar(&opts.Owner, "owner", opts.Owner, "tenant owner; empty uses the un-scoped path")
	cmd.Flags().StringVar(&opts.Game, "game", opts.Game, "game identifier")
	cmd.Flags().StringVar(&opts.Key, "key", opts.Key, "license key")
	cmd.Flags().StringVar(&opts.Serial, "serial", opts.Serial, "device identifier")
	cmd.Flags().BoolVar(&opts.Info, "info", opts.Info, "only fetch service metadata")
	cmd.Flags().IntVar(&opts.Retries, "retries", opts.Retries, "retries on connection errors and 5xx answers")

	return cmd
}

func run(ctx context.Context, opts *ProbeOptions) error {
	cfg := config.LoadConfig(config.Params{})
	log := logger.New(logger.ConfigParams{Cfg: cfg})
	defer func() { _ = log.Sync() }()

	client := newClient(log, opts.Retries)
	endpoint := connectURL(opts.BaseURL, opts.Owner)

	if opts.Info {
		body, err := info(ctx, client, endpoint)
		if err != nil {
			return err
		}
		fmt.Println(string(body))
		return nil
	}

	codec, err := envelope.ProvideCodec(cfg)
	if err != nil {
		return err
	}

	resp, err := redeem(ctx, client, codec, endpoint, opts)
	if err != nil {
		return err
	}
	out, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(out))
	return nil
}

func connectURL(base, owner string) string {
	endpoint := strings.TrimRight(base, "/") + "/connect"
	if owner != "" {
		endpoint += "/" + url.PathEscape(owner)
	}
	return endpoint
}

// newClient retries transport errors and 5xx answers. The gateway releases
// the request nonce on 503, so resending the same envelope is safe.
func newClient(log *zap.Logger, retries int) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = logger.NewLeveled(log)
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if resp == nil {
			return true, err
		}
		return resp.StatusCode >= http.StatusInternalServerError, nil
	}
	return client
}

func info(ctx context.Context, client *retryablehttp.Client, endpoint string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return do(client, req)
}

func redeem(ctx context.Context, client *retryablehttp.Client, codec *envelope.Codec, endpoint string, opts *ProbeOptions) (*gateway.RedeemResponse, error) {
	payload, err := codec.Seal(gateway.RedeemPayload{
		UserKey:   opts.Key,
		Serial:    opts.Serial,
		Nonce:     util.NewNonce(),
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return nil, err
	}

	form := url.Values{
		"game":    {opts.Game},
		"payload": {payload},
		"serial":  {opts.Serial},
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := do(client, req)
	if err != nil {
		return nil, err
	}

	var wire struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, err
	}
	if wire.Data == "" {
		return nil, fmt.Errorf("redemption rejected: %s", strings.TrimSpace(string(body)))
	}

	var resp gateway.RedeemResponse
	if err := codec.Open(wire.Data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func do(client *retryablehttp.Client, req *retryablehttp.Request) ([]byte, error) {
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway answered %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
