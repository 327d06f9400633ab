package qrcode

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const DefaultSize = 256

// QRService renders ticket codes as PNG QR codes pointing at baseURL+code.
type QRService struct {
	baseURL string
	size    int
}

func NewQRService(baseURL string, size int) *QRService {
	if size <= 0 {
		size = DefaultSize
	}
	return &QRService{
		baseURL: baseURL,
		size:    size,
	}
}

// TicketURL is the content encoded in the QR code of ticketCode.
func (s *QRService) TicketURL(ticketCode string) string {
	if s.baseURL == "" {
		return ticketCode
	}
	return strings.TrimRight(s.baseURL, "/") + "/" + ticketCode
}

// GenerateQRCode returns a PNG encoding of the ticket URL.
func (s *QRService) GenerateQRCode(ticketCode string) ([]byte, error) {
	png, err := qrcode.Encode(s.TicketURL(ticketCode), qrcode.Medium, s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code PNG: %w", err)
	}
	return png, nil
}
