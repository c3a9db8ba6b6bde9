package rpc

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Endpoint is a node URL and the optional proxy every request to it goes through.
type Endpoint struct {
	URL   string
	Proxy *url.URL
}

// NewEndpoint validates rawURL and parses proxy with ParseProxy.
func NewEndpoint(rawURL, proxy string) (Endpoint, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Endpoint{}, errors.Wrapf(err, "invalid endpoint url %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Endpoint{}, errors.Errorf("invalid endpoint url %q: scheme must be http or https", rawURL)
	}
	if u.Host == "" {
		return Endpoint{}, errors.Errorf("invalid endpoint url %q: missing host", rawURL)
	}

	proxyURL, err := ParseProxy(proxy)
	if err != nil {
		return Endpoint{}, err
	}

	return Endpoint{URL: u.String(), Proxy: proxyURL}, nil
}

// String returns the endpoint URL with credentials redacted.
func (e Endpoint) String() string {
	u, err := url.Parse(e.URL)
	if err != nil {
		return e.URL
	}
	return u.Redacted()
}

// ParseProxy parses a proxy in one of the forms
//
//	login:pass@host:port
//	login:pass:host:port
//	host:port
//
// each optionally prefixed with a scheme (http, https, socks5, socks5h). http is assumed when absent.
// An empty string yields a nil URL.
//
//nolint:nilnil // no proxy configured
func ParseProxy(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	scheme := "http"
	rest := raw
	if i := strings.Index(rest, "://"); i >= 0 {
		scheme = strings.ToLower(rest[:i])
		rest = rest[i+len("://"):]
	}

	switch scheme {
	case "http", "https", "socks5", "socks5h":
	default:
		return nil, errors.Errorf("invalid proxy %q: unsupported scheme %q", raw, scheme)
	}

	var user *url.Userinfo
	hostPort := rest

	if at := strings.LastIndex(rest, "@"); at >= 0 {
		login, pass, ok := strings.Cut(rest[:at], ":")
		if !ok || login == "" {
			return nil, errors.Errorf("invalid proxy %q: credentials must be login:pass", raw)
		}
		user = url.UserPassword(login, pass)
		hostPort = rest[at+1:]
	} else if parts := strings.Split(rest, ":"); len(parts) == 4 {
		if parts[0] == "" {
			return nil, errors.Errorf("invalid proxy %q: empty login", raw)
		}
		user = url.UserPassword(parts[0], parts[1])
		hostPort = parts[2] + ":" + parts[3]
	}

	host, port, err := net.SplitHostPort(hostPort)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid proxy %q", raw)
	}
	if host == "" {
		return nil, errors.Errorf("invalid proxy %q: missing host", raw)
	}

	const maxPort = 65535
	portNumber, err := strconv.Atoi(port)
	if err != nil || portNumber < 1 || portNumber > maxPort {
		return nil, errors.Errorf("invalid proxy %q: bad port %q", raw, port)
	}

	return &url.URL{
		Scheme: scheme,
		User:   user,
		Host:   net.JoinHostPort(host, port),
	}, nil
}
