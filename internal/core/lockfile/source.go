package lockfile

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// Source is a named package index. Sources owns every Source; packages hold
// plain pointers into that table and share its lifetime with the Lock.
type Source struct {
	name        string
	baseURL     *url.URL
	noVerifySSL bool
}

// Name returns the symbolic name the lock document refers to this index by.
func (s *Source) Name() string {
	return s.name
}

// BaseURL returns the index base URL, e.g. https://pypi.org/simple.
func (s *Source) BaseURL() *url.URL {
	return s.baseURL
}

// NoVerifySSL reports whether the index is trusted without certificate
// verification. When set, installs pass --trusted-host for the index host.
func (s *Source) NoVerifySSL() bool {
	return s.noVerifySSL
}

type sourceEntry struct {
	url         *string
	noVerifySSL *bool
}

func (e *sourceEntry) UnmarshalJSON(data []byte) error {
	return decodeObject(data, func(key string, dec *json.Decoder) error {
		switch key {
		case "url":
			if e.url != nil {
				return fmt.Errorf("duplicate field %q", "url")
			}
			var v string
			if err := decodeValue(dec, &v); err != nil {
				return err
			}
			e.url = &v
		case "no_verify_ssl":
			if e.noVerifySSL != nil {
				return fmt.Errorf("duplicate field %q", "no_verify_ssl")
			}
			var v bool
			if err := decodeValue(dec, &v); err != nil {
				return err
			}
			e.noVerifySSL = &v
		default:
			return fmt.Errorf("unknown field %q in source", key)
		}
		return nil
	})
}

func (e *sourceEntry) toSource(name string) (*Source, error) {
	if e.url == nil {
		return nil, fmt.Errorf("missing field: url")
	}
	baseURL, err := url.Parse(*e.url)
	if err != nil {
		return nil, fmt.Errorf("malformed URL %q: %w", *e.url, err)
	}
	noVerifySSL := false
	if e.noVerifySSL != nil {
		noVerifySSL = *e.noVerifySSL
	}
	return &Source{name: name, baseURL: baseURL, noVerifySSL: noVerifySSL}, nil
}

// Sources maps index names to Source entries.
type Sources struct {
	m map[string]*Source
}

// Get looks a source up by name.
func (ss Sources) Get(name string) (*Source, bool) {
	s, ok := ss.m[name]
	return s, ok
}

// Len reports the number of named sources.
func (ss Sources) Len() int {
	return len(ss.m)
}

func (ss *Sources) UnmarshalJSON(data []byte) error {
	var entries map[string]sourceEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	m := make(map[string]*Source, len(entries))
	for name, entry := range entries {
		source, err := entry.toSource(name)
		if err != nil {
			return fmt.Errorf("source %q: %w", name, err)
		}
		m[name] = source
	}
	ss.m = m
	return nil
}
