package config

import "errors"

var (
	ErrMissingBaseURL = errors.New("base_url is required")
	ErrInvalidBaseURL = errors.New("base_url must be an http(s) URL")
)
