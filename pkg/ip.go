package pkg

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

func ReadUserIP(r *http.Request) (string, error) {
	ipAddr := r.Header.Get("X-Real-Ip")
	if ipAddr == "" {
		ipAddr = r.Header.Get("X-Forwarded-For")
	}
	if ipAddr == "" {
		ipAddr = r.RemoteAddr
	}

	if ipAddr == "" {
		return "", fmt.Errorf("failed to get user IP address")
	}

	// more than one IP can be set in the X-Forwarded-For header
	if strings.Contains(ipAddr, ",") {
		ipAddr = strings.Split(ipAddr, ",")[0]
	}

	// remove the port, if present
	if host, _, err := net.SplitHostPort(strings.TrimSpace(ipAddr)); err == nil {
		ipAddr = host
	}

	return strings.TrimSpace(ipAddr), nil
}

func IPIsLocal(ip string) bool {
	return ip == "localhost" || ip == "127.0.0.1" || ip == "::1"
}
