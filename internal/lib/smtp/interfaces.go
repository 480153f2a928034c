// Package smtp отправляет письма уведомлений через SMTP сервер.
package smtp

import (
	"errors"
	"io"
)

var errNoStartTLS = errors.New("STARTTLS not supported")

// Client часть *smtp.Client, нужная для отправки письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface открывает соединения с SMTP сервером.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
