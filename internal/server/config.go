package server

import (
	"net"
	"strconv"
	"time"
)

type HttpConfig struct {
	Host string `conf:"host"`
	Port int    `conf:"port"`
	H2c  bool   `conf:"h2c"`

	// ReadHeaderTimeout bounds how long a client may take to send the
	// request headers. Zero means no timeout.
	ReadHeaderTimeout time.Duration `conf:"read_header_timeout"`
}

// Address is the host:port the server listens on.
func (c HttpConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
