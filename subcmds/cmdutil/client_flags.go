// Copyright (c) 2023 BVK Chaitanya

package cmdutil

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/bvk/cryptowatch/api"
)

// DefaultPort is the api port when neither a flag nor PORT is set.
const DefaultPort = 4000

type ClientFlags struct {
	port        int
	Host        string
	APIPath     string
	HTTPTimeout time.Duration
}

func (cf *ClientFlags) SetFlags(fset *flag.FlagSet) {
	fset.IntVar(&cf.port, "connect-port", 0, "TCP port number for the api endpoint (default=4000 or PORT value)")
	fset.StringVar(&cf.Host, "connect-host", "127.0.0.1", "Hostname or IP address for the api endpoint")
	fset.StringVar(&cf.APIPath, "api-path", "/", "base path to the api handler")
	fset.DurationVar(&cf.HTTPTimeout, "http-timeout", 30*time.Second, "http client timeout")
}

func (cf *ClientFlags) Port() int {
	if cf.port != 0 {
		return cf.port
	}
	if v := os.Getenv("PORT"); len(v) != 0 {
		if port, err := strconv.ParseUint(v, 10, 16); err == nil && port != 0 {
			return int(port)
		}
	}
	return DefaultPort
}

func (cf *ClientFlags) AddressURL() *url.URL {
	return &url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(cf.Host, fmt.Sprintf("%d", cf.Port())),
		Path:   cf.APIPath,
	}
}

func (cf *ClientFlags) HttpClient() *http.Client {
	return &http.Client{
		Timeout: cf.HTTPTimeout,
	}
}

func Get[RESP any](ctx context.Context, cf *ClientFlags, subpath string, query url.Values) (*RESP, error) {
	return do[RESP](ctx, cf, http.MethodGet, subpath, query, nil)
}

func Post[RESP, REQ any](ctx context.Context, cf *ClientFlags, subpath string, req *REQ) (*RESP, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return do[RESP](ctx, cf, http.MethodPost, subpath, nil, data)
}

func Patch[RESP, REQ any](ctx context.Context, cf *ClientFlags, subpath string, req *REQ) (*RESP, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return do[RESP](ctx, cf, http.MethodPatch, subpath, nil, data)
}

func Delete(ctx context.Context, cf *ClientFlags, subpath string) error {
	_, err := do[struct{}](ctx, cf, http.MethodDelete, subpath, nil, nil)
	return err
}

// do sends a request and decodes the data field of the response envelope.
// Error responses are returned as errors with the server's message.
func do[RESP any](ctx context.Context, cf *ClientFlags, method, subpath string, query url.Values, body []byte) (*RESP, error) {
	addrURL := cf.AddressURL()
	addrURL.Path = path.Join(addrURL.Path, subpath)
	if len(query) != 0 {
		addrURL.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	r, err := http.NewRequestWithContext(ctx, method, addrURL.String(), reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		r.Header.Set("content-type", "application/json")
	}

	client := cf.HttpClient()
	resp, err := client.Do(r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		eresp := new(api.ErrorResponse)
		if err := json.Unmarshal(data, eresp); err == nil && len(eresp.Error) != 0 {
			return nil, fmt.Errorf("http status code %d: %s", resp.StatusCode, eresp.Error)
		}
		return nil, fmt.Errorf("http status code %d: %s", resp.StatusCode, data)
	}
	if resp.StatusCode == http.StatusNoContent {
		return new(RESP), nil
	}

	response := new(api.Response[RESP])
	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return nil, fmt.Errorf("could not decode response: %w", err)
	}
	return &response.Data, nil
}

// PrintJSON writes v as indented json.
func PrintJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
