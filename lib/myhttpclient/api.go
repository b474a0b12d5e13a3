package myhttpclient

import "context"

//go:generate mockgen -source=api.go -package myhttpclient -destination client_mock.go HTTPSender
type HTTPSender interface {
	Send(ctx context.Context, method string, url string, headers map[string]string, body []byte) (int, []byte, error)
}

func New() HTTPSender {
	return newJSONHTTPClient()
}
