package myhttp

import (
	"fmt"
	"net/http"
	"os"
)

func HostnameWithScheme(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

func GuessHostnameWithScheme() string {
	hostname := os.Getenv("HOSTNAME_WITH_SCHEME")
	if hostname == "" {
		hostname = "http://localhost:8080"
	}

	return hostname
}
