package wggesucht

import (
	"fmt"
	"net/http"
	"net/url"
)

// clientFor returns the shared http.Client for a proxy endpoint, creating it
// on first use. Clients are kept for the lifetime of c so connections to the
// same proxy are pooled.
func (c *Client) clientFor(proxy string) (*http.Client, error) {
	if proxy == "" {
		return c.httpClient(), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.proxied[proxy]; ok {
		return client, nil
	}

	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	if proxyURL.Scheme == "" || proxyURL.Host == "" {
		return nil, fmt.Errorf("parse proxy url: %q has no scheme or host", proxyURL.Redacted())
	}

	base := c.httpClient()
	transport, ok := base.Transport.(*http.Transport)
	if !ok || transport == nil {
		transport = http.DefaultTransport.(*http.Transport)
	}
	transport = transport.Clone()
	transport.Proxy = http.ProxyURL(proxyURL)

	client := &http.Client{
		Transport:     transport,
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
		Timeout:       base.Timeout,
	}
	if c.proxied == nil {
		c.proxied = map[string]*http.Client{}
	}
	c.proxied[proxy] = client

	return client, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
