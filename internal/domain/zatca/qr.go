// Package zatca builds the ZATCA (Saudi tax authority) e-invoicing QR
// payload: five TLV fields concatenated in tag order and Base64-encoded.
// The output must be bit-exact; any deviation in tag order, length byte, or
// encoding breaks compliance QR scanners.
package zatca

import (
	"encoding/base64"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// TLV tags defined by the ZATCA simplified invoice QR specification.
const (
	tagSellerName = 1
	tagVATNumber  = 2
	tagTimestamp  = 3
	tagTotal      = 4
	tagTaxTotal   = 5
)

// maxFieldLen is the largest value a one-byte TLV length can describe.
const maxFieldLen = 255

// Invoice carries the five fields encoded into the compliance QR.
type Invoice struct {
	SellerName string
	VATNumber  string
	Timestamp  time.Time
	// Total is the invoice grand total including tax.
	Total decimal.Decimal
	// TaxTotal is the total tax amount.
	TaxTotal decimal.Decimal
}

// EncodeQR encodes the invoice as the Base64 TLV payload embedded in the
// invoice QR code. Fields are emitted in tag order 1..5 with no separators:
// seller name, VAT registration number, RFC 3339 timestamp, total and tax
// amounts as decimal strings with two places. A field whose UTF-8 encoding
// exceeds 255 bytes cannot be represented by the one-byte length and is
// rejected.
func EncodeQR(inv Invoice) (string, error) {
	fields := []struct {
		tag   byte
		value string
	}{
		{tagSellerName, inv.SellerName},
		{tagVATNumber, inv.VATNumber},
		{tagTimestamp, inv.Timestamp.Format(time.RFC3339)},
		{tagTotal, inv.Total.StringFixed(2)},
		{tagTaxTotal, inv.TaxTotal.StringFixed(2)},
	}

	var buf []byte
	for _, f := range fields {
		raw := []byte(f.value)
		if len(raw) > maxFieldLen {
			return "", errors.Errorf("tlv field %d: value length %d exceeds %d bytes", f.tag, len(raw), maxFieldLen)
		}
		buf = append(buf, f.tag, byte(len(raw)))
		buf = append(buf, raw...)
	}

	return base64.StdEncoding.EncodeToString(buf), nil
}
