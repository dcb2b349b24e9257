package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP はリクエスト元のクライアントIPアドレスを返す。
// リバースプロキシ経由の場合はX-Forwarded-Forの先頭エントリを採用し、
// なければRemoteAddrからポート部分を除いた値を返す。
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		ip := strings.TrimSpace(parts[0])
		if ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
