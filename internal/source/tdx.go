package source

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"TitanQuant/internal/model"
)

// TdxSource speaks the TDX terminal binary protocol over raw TCP. The hosted
// endpoints sit outside the usual HTTP rate limiters, which makes this a
// useful mid-chain fallback when the web providers start blocking.
//
// A TDX session is not safe for concurrent use, so every Fetch dials a fresh
// connection and closes it on all exit paths. Never hold a shared client here.
type TdxSource struct {
	Addr    string
	Count   int
	Timeout time.Duration
}

func NewTdxSource(addr string, timeout time.Duration) *TdxSource {
	if addr == "" {
		addr = "119.147.212.81:7709"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TdxSource{Addr: addr, Count: 100, Timeout: timeout}
}

func (s *TdxSource) Name() string { return "tdx" }

func (s *TdxSource) Fetch(ctx context.Context, symbol string, market model.Market) (RawBatch, error) {
	if market == model.MarketHK {
		return RawBatch{}, fmt.Errorf("tdx: hk not supported")
	}
	conn, err := s.dial(ctx)
	if err != nil {
		return RawBatch{}, fmt.Errorf("tdx dial: %w", err)
	}
	defer conn.Close()

	sess := &tdxSession{conn: conn, timeout: s.Timeout}
	if err := sess.handshake(); err != nil {
		return RawBatch{}, fmt.Errorf("tdx handshake: %w", err)
	}

	marketCode := uint16(0) // Shenzhen
	if marketPrefix(symbol) == "sh" {
		marketCode = 1
	}
	bars, err := sess.dailyBars(marketCode, symbol, uint16(s.Count))
	if err != nil {
		return RawBatch{}, fmt.Errorf("tdx bars: %w", err)
	}
	if len(bars) == 0 {
		return RawBatch{}, fmt.Errorf("tdx: no bars for %s", symbol)
	}

	rows := make([]Row, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, Row{
			"datetime": b.date,
			"open":     b.open,
			"close":    b.close,
			"high":     b.high,
			"low":      b.low,
			"vol":      b.volume,
		})
	}
	return RawBatch{Provider: s.Name(), Rows: rows}, nil
}

func (s *TdxSource) dial(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: s.Timeout}
	return d.DialContext(ctx, "tcp", s.Addr)
}

// tdxSession wraps one request/response exchange on a dedicated connection.
type tdxSession struct {
	conn    net.Conn
	timeout time.Duration
}

// Fixed login frames the terminal sends before any quote request.
var tdxSetupFrames = [][]byte{
	{0x0c, 0x02, 0x18, 0x93, 0x00, 0x01, 0x03, 0x00, 0x03, 0x00, 0x0d, 0x00, 0x01},
	{0x0c, 0x02, 0x18, 0x94, 0x00, 0x01, 0x03, 0x00, 0x03, 0x00, 0x0d, 0x00, 0x02},
}

func (t *tdxSession) handshake() error {
	for _, frame := range tdxSetupFrames {
		if _, err := t.roundTrip(frame); err != nil {
			return err
		}
	}
	return nil
}

type tdxBar struct {
	date   string
	open   float64
	close  float64
	high   float64
	low    float64
	volume float64
}

// dailyBars issues a security-bars request (category 9 = daily kline) and
// decodes the compressed varint body.
func (t *tdxSession) dailyBars(market uint16, symbol string, count uint16) ([]tdxBar, error) {
	body := new(bytes.Buffer)
	binary.Write(body, binary.LittleEndian, uint16(0x052d)) // command: security bars
	binary.Write(body, binary.LittleEndian, market)
	code := make([]byte, 6)
	copy(code, symbol)
	body.Write(code)
	binary.Write(body, binary.LittleEndian, uint16(9)) // category: daily
	binary.Write(body, binary.LittleEndian, uint16(1))
	binary.Write(body, binary.LittleEndian, uint16(0)) // start
	binary.Write(body, binary.LittleEndian, count)
	body.Write(make([]byte, 10)) // reserved

	frame := new(bytes.Buffer)
	frame.WriteByte(0x0c)
	frame.Write([]byte{0x01, 0x08, 0x64, 0x01, 0x01})
	binary.Write(frame, binary.LittleEndian, uint16(body.Len()))
	binary.Write(frame, binary.LittleEndian, uint16(body.Len()))
	frame.Write(body.Bytes())

	payload, err := t.roundTrip(frame.Bytes())
	if err != nil {
		return nil, err
	}
	return parseTdxBars(payload)
}

// roundTrip writes one frame and reads the matching response payload,
// inflating it when the header flags zlib compression.
func (t *tdxSession) roundTrip(frame []byte) ([]byte, error) {
	deadline := time.Now().Add(t.timeout)
	if err := t.conn.SetDeadline(deadline); err != nil {
		return nil, err
	}
	if _, err := t.conn.Write(frame); err != nil {
		return nil, err
	}

	header := make([]byte, 16)
	if _, err := io.ReadFull(t.conn, header); err != nil {
		return nil, err
	}
	zipSize := binary.LittleEndian.Uint16(header[12:14])
	rawSize := binary.LittleEndian.Uint16(header[14:16])

	payload := make([]byte, zipSize)
	if _, err := io.ReadFull(t.conn, payload); err != nil {
		return nil, err
	}
	if zipSize == rawSize {
		return payload, nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	if len(out) != int(rawSize) {
		return nil, fmt.Errorf("inflate: want %d bytes, got %d", rawSize, len(out))
	}
	return out, nil
}

func parseTdxBars(payload []byte) ([]tdxBar, error) {
	if len(payload) < 2 {
		return nil, fmt.Errorf("short payload: %d bytes", len(payload))
	}
	count := int(binary.LittleEndian.Uint16(payload[0:2]))
	pos := 2

	bars := make([]tdxBar, 0, count)
	// Prices arrive as a varint diff chain in hundredths; each bar's open is
	// relative to the running base, and close/high/low are relative to open.
	base := 0
	for i := 0; i < count; i++ {
		if pos+4 > len(payload) {
			return nil, fmt.Errorf("truncated bar %d", i)
		}
		rawDate := binary.LittleEndian.Uint32(payload[pos : pos+4])
		pos += 4

		openDiff, err := readTdxPrice(payload, &pos)
		if err != nil {
			return nil, err
		}
		closeDiff, err := readTdxPrice(payload, &pos)
		if err != nil {
			return nil, err
		}
		highDiff, err := readTdxPrice(payload, &pos)
		if err != nil {
			return nil, err
		}
		lowDiff, err := readTdxPrice(payload, &pos)
		if err != nil {
			return nil, err
		}
		if pos+8 > len(payload) {
			return nil, fmt.Errorf("truncated volume in bar %d", i)
		}
		vol := decodeTdxVolume(binary.LittleEndian.Uint32(payload[pos : pos+4]))
		pos += 8 // volume + amount; amount unused

		open := base + openDiff
		bars = append(bars, tdxBar{
			date:   fmt.Sprintf("%04d-%02d-%02d", rawDate/10000, rawDate%10000/100, rawDate%100),
			open:   float64(open) / 100,
			close:  float64(open+closeDiff) / 100,
			high:   float64(open+highDiff) / 100,
			low:    float64(open+lowDiff) / 100,
			volume: vol,
		})
		base = open + closeDiff
	}
	return bars, nil
}

// readTdxPrice decodes one signed base-128 varint: 6 data bits plus a sign
// bit in the first byte, 7 data bits in each continuation byte.
func readTdxPrice(buf []byte, pos *int) (int, error) {
	if *pos >= len(buf) {
		return 0, fmt.Errorf("truncated price varint")
	}
	b := buf[*pos]
	*pos++
	value := int(b & 0x3f)
	negative := b&0x40 != 0
	shift := 6
	for b&0x80 != 0 {
		if *pos >= len(buf) {
			return 0, fmt.Errorf("truncated price varint")
		}
		b = buf[*pos]
		*pos++
		value |= int(b&0x7f) << shift
		shift += 7
	}
	if negative {
		value = -value
	}
	return value, nil
}

// decodeTdxVolume expands the protocol's packed 32-bit float-ish volume
// encoding: the top byte is a base-2 exponent, the lower bytes hold the
// mantissa split across three fields.
func decodeTdxVolume(ivol uint32) float64 {
	logPoint := ivol >> 24
	hleax := (ivol >> 16) & 0xff
	lheax := (ivol >> 8) & 0xff
	lleax := ivol & 0xff

	dwEcx := int(logPoint)*2 - 0x7f
	dwEdx := int(logPoint)*2 - 0x86
	dwEsi := int(logPoint)*2 - 0x8e
	dwEax := int(logPoint)*2 - 0x96

	dblXmm6 := pow2(dwEcx)

	var dblXmm4 float64
	if hleax > 0x80 {
		dblXmm4 = pow2(dwEdx+1) * float64(hleax&0x7f)
	} else {
		if dwEdx >= 0 {
			dblXmm4 = float64(int(1)<<uint(dwEdx)) * float64(hleax)
		} else {
			dblXmm4 = pow2(dwEdx) * float64(hleax)
		}
	}

	dblXmm3 := pow2(dwEsi) * float64(lheax)
	dblXmm1 := pow2(dwEax) * float64(lleax)
	if hleax&0x80 != 0 {
		dblXmm3 *= 2
		dblXmm1 *= 2
	}
	return dblXmm6 + dblXmm4 + dblXmm3 + dblXmm1
}

func pow2(exp int) float64 {
	if exp >= 0 {
		if exp < 63 {
			return float64(int64(1) << uint(exp))
		}
		v := 1.0
		for i := 0; i < exp; i++ {
			v *= 2
		}
		return v
	}
	v := 1.0
	for i := 0; i < -exp; i++ {
		v /= 2
	}
	return v
}
