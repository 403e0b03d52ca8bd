package pix

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fornodoro/backend/pkg/config"
	pkgerrors "github.com/fornodoro/backend/pkg/errors"
)

// EMV field IDs used by the static BR Code layout.
const (
	tagPayloadFormat       = "00"
	tagMerchantAccount     = "26"
	tagMerchantCategory    = "52"
	tagTransactionCurrency = "53"
	tagTransactionAmount   = "54"
	tagCountryCode         = "58"
	tagMerchantName        = "59"
	tagMerchantCity        = "60"
	tagAdditionalData      = "62"
	tagCRC                 = "63"

	pixGUI      = "br.gov.bcb.pix"
	currencyBRL = "986"
)

// Charge is a generated PIX payment request.
type Charge struct {
	Payload   string
	TxID      string
	ExpiresAt time.Time
}

// Generator builds copy-and-paste BR Code payloads for checkout.
type Generator struct {
	cfg config.PixConfig
	now func() time.Time
}

// NewGenerator validates the merchant settings and returns a generator.
func NewGenerator(cfg config.PixConfig) (*Generator, error) {
	if strings.TrimSpace(cfg.Key) == "" {
		return nil, fmt.Errorf("pix key required")
	}
	if cfg.Expiry <= 0 {
		return nil, fmt.Errorf("pix expiry must be positive")
	}
	return &Generator{cfg: cfg, now: time.Now}, nil
}

// Generate builds the payload for one order. The transaction id is the order
// id stripped of dashes, truncated to the 25 characters the format allows.
func (g *Generator) Generate(orderID uuid.UUID, amount decimal.Decimal) (*Charge, error) {
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pix amount must be positive")
	}

	txID := strings.ReplaceAll(orderID.String(), "-", "")
	if len(txID) > 25 {
		txID = txID[:25]
	}

	var b strings.Builder
	writeField(&b, tagPayloadFormat, "01")
	writeField(&b, tagMerchantAccount, merchantAccount(g.cfg.Key))
	writeField(&b, tagMerchantCategory, "0000")
	writeField(&b, tagTransactionCurrency, currencyBRL)
	writeField(&b, tagTransactionAmount, amount.StringFixed(2))
	writeField(&b, tagCountryCode, "BR")
	writeField(&b, tagMerchantName, normalizeName(g.cfg.MerchantName, 25))
	writeField(&b, tagMerchantCity, normalizeName(g.cfg.MerchantCity, 15))
	writeField(&b, tagAdditionalData, field("05", txID))

	// The CRC covers everything up to and including its own tag and length.
	b.WriteString(tagCRC + "04")
	payload := b.String()
	payload += fmt.Sprintf("%04X", crc16(payload))

	return &Charge{
		Payload:   payload,
		TxID:      txID,
		ExpiresAt: g.now().Add(g.cfg.Expiry),
	}, nil
}

// Expiry returns the configured payment window.
func (g *Generator) Expiry() time.Duration {
	return g.cfg.Expiry
}

func merchantAccount(key string) string {
	return field("00", pixGUI) + field("01", key)
}

func writeField(b *strings.Builder, id, value string) {
	b.WriteString(field(id, value))
}

func field(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// normalizeName strips diacritics the format forbids and enforces the field
// length limits.
func normalizeName(name string, max int) string {
	replacer := strings.NewReplacer(
		"á", "a", "à", "a", "ã", "a", "â", "a",
		"é", "e", "ê", "e", "í", "i",
		"ó", "o", "õ", "o", "ô", "o",
		"ú", "u", "ç", "c",
		"Á", "A", "À", "A", "Ã", "A", "Â", "A",
		"É", "E", "Ê", "E", "Í", "I",
		"Ó", "O", "Õ", "O", "Ô", "O",
		"Ú", "U", "Ç", "C",
	)
	cleaned := strings.ToUpper(strings.TrimSpace(replacer.Replace(name)))
	if len(cleaned) > max {
		cleaned = cleaned[:max]
	}
	return cleaned
}

// crc16 implements CRC-16/CCITT-FALSE, the checksum BR Code mandates.
func crc16(data string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(data); i++ {
		crc ^= uint16(data[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
