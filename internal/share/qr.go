package share

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// QRCode renders url as a PNG of size x size pixels.
func QRCode(url string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}

// URL joins the public base URL and a share id.
func URL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/share/" + id
}
