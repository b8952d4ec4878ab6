package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tnqbao/gau-media-gateway/config"
)

// KeyResolver derives the storage key from an issued asset URL.
type KeyResolver interface {
	URLToKey(rawURL string) (string, error)
}

// AssetLocator is a KeyResolver that can also build the asset URL for a key.
type AssetLocator interface {
	KeyResolver
	KeyToURL(key string) string
}

func NewAssetLocator(cfg *config.EnvConfig) (AssetLocator, error) {
	base, err := url.Parse(cfg.Storage.PublicURL)
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("invalid storage public url %q", cfg.Storage.PublicURL)
	}
	base.Path = strings.TrimSuffix(base.Path, "/")
	base.RawQuery, base.Fragment = "", ""

	switch cfg.Storage.URLStyle {
	case config.URLStylePath:
		return &PathStyleResolver{Base: base, Bucket: cfg.Storage.Bucket}, nil
	case config.URLStyleVirtualHost:
		return &VirtualHostResolver{Base: base, Bucket: cfg.Storage.Bucket}, nil
	case config.URLStylePrefix:
		return &PrefixResolver{Base: base}, nil
	default:
		return nil, fmt.Errorf("unsupported url style %q", cfg.Storage.URLStyle)
	}
}

// PathStyleResolver handles https://host/<bucket>/<key>.
type PathStyleResolver struct {
	Base   *url.URL
	Bucket string
}

func (r *PathStyleResolver) URLToKey(rawURL string) (string, error) {
	u, err := parseAssetURL(rawURL)
	if err != nil {
		return "", err
	}

	prefix := "/" + r.Bucket + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", fmt.Errorf("%w: path does not start with bucket %s", ErrMalformedURL, r.Bucket)
	}
	return checkKey(strings.TrimPrefix(u.Path, prefix))
}

func (r *PathStyleResolver) KeyToURL(key string) string {
	return r.Base.String() + "/" + url.PathEscape(r.Bucket) + "/" + escapeKey(key)
}

// VirtualHostResolver handles https://<bucket>.host/<key>.
type VirtualHostResolver struct {
	Base   *url.URL
	Bucket string
}

func (r *VirtualHostResolver) URLToKey(rawURL string) (string, error) {
	u, err := parseAssetURL(rawURL)
	if err != nil {
		return "", err
	}

	if !strings.HasPrefix(strings.ToLower(u.Hostname()), strings.ToLower(r.Bucket)+".") {
		return "", fmt.Errorf("%w: host is not a %s virtual host", ErrMalformedURL, r.Bucket)
	}
	return checkKey(strings.TrimPrefix(u.Path, "/"))
}

func (r *VirtualHostResolver) KeyToURL(key string) string {
	u := *r.Base
	u.Host = r.Bucket + "." + r.Base.Host
	return u.String() + "/" + escapeKey(key)
}

// PrefixResolver handles URLs under an arbitrary public base, e.g. a CDN origin path.
type PrefixResolver struct {
	Base *url.URL
}

func (r *PrefixResolver) URLToKey(rawURL string) (string, error) {
	u, err := parseAssetURL(rawURL)
	if err != nil {
		return "", err
	}

	if !strings.EqualFold(u.Host, r.Base.Host) {
		return "", fmt.Errorf("%w: unexpected host %s", ErrMalformedURL, u.Host)
	}
	prefix := r.Base.Path + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", fmt.Errorf("%w: path is outside %s", ErrMalformedURL, prefix)
	}
	return checkKey(strings.TrimPrefix(u.Path, prefix))
}

func (r *PrefixResolver) KeyToURL(key string) string {
	return r.Base.String() + "/" + escapeKey(key)
}

func parseAssetURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: not an absolute http(s) url", ErrMalformedURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrMalformedURL)
	}
	return u, nil
}

func checkKey(key string) (string, error) {
	if key == "" || strings.HasSuffix(key, "/") {
		return "", fmt.Errorf("%w: empty object key", ErrMalformedURL)
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return "", fmt.Errorf("%w: invalid key segment", ErrMalformedURL)
		}
	}
	return key, nil
}

func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
