package config

import "strings"

const apiBaseURLVar = "API_BASE_URL"

type ClientConfig interface {
	GetAPIBaseURL() string
}

type Client struct{}

var _ ClientConfig = Client{}

// GetAPIBaseURL returns the API root without a trailing slash, e.g.
// "http://localhost:8000/api". Endpoint paths are appended to it.
func (Client) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiBaseURLVar, "http://localhost:8000/api"), "/")
}
